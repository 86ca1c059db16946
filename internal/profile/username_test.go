package profile

import (
	"errors"
	"testing"
)

func takenSet(names ...string) func(string) (bool, error) {
	set := map[string]struct{}{}
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(candidate string) (bool, error) {
		_, ok := set[candidate]
		return ok, nil
	}
}

func TestUsernameBase(t *testing.T) {
	cases := map[string]string{
		"alice@x.com":                 "alice",
		"Alice.Smith+tag@example.io":  "alicesmithta",
		"very_long_local_part@x.com":  "very_long_lo",
		"a!@x.com":                    "user",
	}
	for email, want := range cases {
		if got := UsernameBase(email); got != want {
			t.Errorf("UsernameBase(%q) = %q, want %q", email, got, want)
		}
	}
}

func TestGenerateUsername_FreeBase(t *testing.T) {
	got, err := GenerateUsername("alice@x.com", takenSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice" {
		t.Errorf("got %q", got)
	}
}

func TestGenerateUsername_NumericSuffixOnCollision(t *testing.T) {
	got, err := GenerateUsername("alice@x.com", takenSet("alice", "alice1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice2" {
		t.Errorf("got %q, want alice2", got)
	}
}

func TestGenerateUsername_SuffixFitsLengthLimit(t *testing.T) {
	// base is truncated to 12; with base and base1..base9 taken the
	// result must still fit in 14 characters
	base := "very_long_lo"
	taken := []string{base}
	for i := 1; i <= 9; i++ {
		taken = append(taken, base+string(rune('0'+i)))
	}

	got, err := GenerateUsername("very_long_local_part@x.com", takenSet(taken...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "very_long_lo10" {
		t.Errorf("got %q", got)
	}
	if len(got) > 14 {
		t.Errorf("%q exceeds 14 characters", got)
	}
}

func TestGenerateUsername_GivesUpEventually(t *testing.T) {
	_, err := GenerateUsername("bob@x.com", func(string) (bool, error) { return true, nil })
	if !errors.Is(err, ErrNoUsername) {
		t.Errorf("expected ErrNoUsername, got %v", err)
	}
}

func TestValidUsername(t *testing.T) {
	for u, want := range map[string]bool{
		"ab":              false,
		"abc":             true,
		"snake_case_14x":  true,
		"way_too_long_username": false,
		"bad-dash":        false,
		"space name":      false,
	} {
		if got := ValidUsername(u); got != want {
			t.Errorf("ValidUsername(%q) = %v, want %v", u, got, want)
		}
	}
}
