package playlist

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"mixtape/internal/apperr"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Filters is the structured listing filter. Absent fields impose no
// constraint; visibility defaults to public-only.
type Filters struct {
	Platform string
	Tags     []string
	OwnerID  uint64
	Search   string
	IsPublic *bool
}

// ParseFilters reads filter fields from query values. Malformed values
// are rejected rather than silently dropped.
func ParseFilters(q url.Values) (Filters, error) {
	var f Filters

	if v := strings.TrimSpace(q.Get("platform")); v != "" {
		if !ValidPlatform(v) {
			return f, apperr.Invalid("platform", "must be one of spotify, apple, custom")
		}
		f.Platform = v
	}

	if v := q.Get("tags"); v != "" {
		for _, t := range strings.Split(v, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}

	if v := strings.TrimSpace(q.Get("user_id")); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, apperr.Invalid("user_id", "must be a numeric user id")
		}
		f.OwnerID = id
	}

	if v := strings.TrimSpace(q.Get("search")); v != "" {
		f.Search = v
	}

	if v := strings.TrimSpace(q.Get("is_public")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, apperr.Invalid("is_public", "must be true or false")
		}
		f.IsPublic = &b
	}

	return f, nil
}

// Apply composes the filter into store predicates. Unless the caller is
// the owner listing their own content, results are restricted to
// public playlists regardless of the requested visibility.
func (f Filters) Apply(q *gorm.DB, includePrivate bool) *gorm.DB {
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}
	if len(f.Tags) > 0 {
		// non-empty intersection with the playlist's tag set
		q = q.Where("tags && ?", pq.StringArray(f.Tags))
	}
	if f.OwnerID != 0 {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}

	if includePrivate {
		if f.IsPublic != nil {
			q = q.Where("is_public = ?", *f.IsPublic)
		}
	} else {
		q = q.Where("is_public = true")
	}
	return q
}

// CacheKey is the canonical serialization used as the cache key part
// for this filter; tag order does not change the key.
func (f Filters) CacheKey() string {
	tags := append([]string(nil), f.Tags...)
	sort.Strings(tags)

	pub := ""
	if f.IsPublic != nil {
		pub = strconv.FormatBool(*f.IsPublic)
	}

	return strings.Join([]string{
		"p=" + f.Platform,
		"t=" + strings.Join(tags, ","),
		"o=" + strconv.FormatUint(f.OwnerID, 10),
		"s=" + f.Search,
		"pub=" + pub,
	}, ";")
}
