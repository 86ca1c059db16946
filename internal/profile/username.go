package profile

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	usernameMaxLen = 14
	baseMaxLen     = 12
	maxAttempts    = 99
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,14}$`)
var stripRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

var ErrNoUsername = errors.New("could not derive a free username")

func ValidUsername(u string) bool {
	return usernameRe.MatchString(u)
}

// UsernameBase derives the starting candidate from an email address:
// local part, lowercased, stripped to the username charset, truncated
// so a collision suffix still fits.
func UsernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	base := strings.ToLower(stripRe.ReplaceAllString(local, ""))
	if len(base) > baseMaxLen {
		base = base[:baseMaxLen]
	}
	if len(base) < 3 {
		base = "user"
	}
	return base
}

// GenerateUsername walks base, base1, base2, ... until taken reports a
// free name, shortening the base when the suffix would overflow the
// 14-character limit. Gives up after 99 attempts.
func GenerateUsername(email string, taken func(string) (bool, error)) (string, error) {
	base := UsernameBase(email)

	for n := 0; n < maxAttempts; n++ {
		candidate := base
		if n > 0 {
			suffix := strconv.Itoa(n)
			if len(base)+len(suffix) > usernameMaxLen {
				candidate = base[:usernameMaxLen-len(suffix)]
			}
			candidate += suffix
		}
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", ErrNoUsername
}
