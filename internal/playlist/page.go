package playlist

import (
	"net/url"
	"strconv"
	"strings"

	"mixtape/internal/apperr"
)

const (
	// DefaultPageLimit is the feed page size when none is requested.
	DefaultPageLimit = 12
	// MaxPageLimit caps a requested page size.
	MaxPageLimit = 50
	// BoundedListLimit caps token-less discovery lists.
	BoundedListLimit = 20
)

// Page is a 0-based offset window over a feed.
type Page struct {
	Page  int
	Limit int
}

func ParsePage(q url.Values) (Page, error) {
	p := Page{Page: 0, Limit: DefaultPageLimit}

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, apperr.Invalid("page", "must be a non-negative integer")
		}
		p.Page = n
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return p, apperr.Invalid("limit", "must be a positive integer")
		}
		if n > MaxPageLimit {
			n = MaxPageLimit
		}
		p.Limit = n
	}

	return p, nil
}

func (p Page) Offset() int { return p.Page * p.Limit }

// HasMore reports whether rows exist past this window.
func (p Page) HasMore(total int64) bool {
	return total > int64(p.Offset()+p.Limit)
}
