package playlist

import (
	"net/url"
	"testing"
)

func TestParsePage_Defaults(t *testing.T) {
	p, err := ParsePage(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 0 || p.Limit != DefaultPageLimit {
		t.Errorf("got %+v", p)
	}
}

func TestParsePage_RejectsBadWindows(t *testing.T) {
	for name, kv := range map[string][2]string{
		"zero limit":     {"limit", "0"},
		"negative limit": {"limit", "-3"},
		"negative page":  {"page", "-1"},
		"non-numeric":    {"page", "two"},
	} {
		q := url.Values{}
		q.Set(kv[0], kv[1])
		if _, err := ParsePage(q); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParsePage_ClampsOversizedLimit(t *testing.T) {
	q := url.Values{}
	q.Set("limit", "500")

	p, err := ParsePage(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Limit != MaxPageLimit {
		t.Errorf("limit = %d", p.Limit)
	}
}

// 25 rows at limit 12: page 0 is full with more to come, page 2 holds
// the final row, page 3 is past the end.
func TestPageHasMore(t *testing.T) {
	const total = 25

	cases := []struct {
		page    int
		hasMore bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{3, false},
	}
	for _, c := range cases {
		p := Page{Page: c.page, Limit: 12}
		if got := p.HasMore(total); got != c.hasMore {
			t.Errorf("page %d: has_more = %v, want %v", c.page, got, c.hasMore)
		}
	}
}

func TestPageOffset(t *testing.T) {
	p := Page{Page: 2, Limit: 12}
	if p.Offset() != 24 {
		t.Errorf("offset = %d", p.Offset())
	}
}
