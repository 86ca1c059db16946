package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"mixtape/internal/apperr"
	"mixtape/internal/cache"
	"mixtape/internal/profile"
	"mixtape/internal/social"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minContextRunes = 10

type Service struct {
	DB    *gorm.DB
	Cache *cache.Coordinator
}

type OwnerSummary struct {
	UserID    uint64  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// WithUser is a playlist enriched with its owner summary and derived
// counts. Counts are computed at read time, never stored.
type WithUser struct {
	Playlist
	Owner      OwnerSummary `json:"user_profile"`
	LikesCount int64        `json:"likes_count"`
	PlaysCount int64        `json:"plays_count"`
	Tracks     []Track      `json:"tracks,omitempty"`
}

type FeedPage struct {
	Data    []WithUser `json:"data"`
	Count   int64      `json:"count"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	HasMore bool       `json:"has_more"`
}

// ValidateContextStory enforces the sharing gate: a playlist must carry
// a personal story of at least 10 characters. Inclusive lower bound.
func ValidateContextStory(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < minContextRunes {
		return apperr.Invalid("context_story", "context story must be at least 10 characters")
	}
	return nil
}

// List returns up to 20 playlists matching the filter, newest first.
// Only public rows are visible unless the caller is listing their own.
func (s *Service) List(ctx context.Context, f Filters, callerID uint64) ([]WithUser, error) {
	includePrivate := callerID != 0 && f.OwnerID == callerID

	load := func(ctx context.Context) (any, error) {
		var rows []Playlist
		err := f.Apply(s.DB.WithContext(ctx).Model(&Playlist{}), includePrivate).
			Order("created_at desc").
			Limit(BoundedListLimit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		return s.enrich(ctx, rows)
	}

	var out []WithUser
	if includePrivate {
		// owner view is never served from the shared cache
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return v.([]WithUser), nil
	}

	key := cache.Key("playlists", "list", f.CacheKey())
	if err := s.Cache.GetJSON(ctx, key, &out, load); err != nil {
		return nil, err
	}
	return out, nil
}

// Feed returns one page of the paged feed together with the total
// count and the has_more flag.
func (s *Service) Feed(ctx context.Context, f Filters, pg Page, callerID uint64) (*FeedPage, error) {
	includePrivate := callerID != 0 && f.OwnerID == callerID

	load := func(ctx context.Context) (any, error) {
		base := func() *gorm.DB {
			return f.Apply(s.DB.WithContext(ctx).Model(&Playlist{}), includePrivate)
		}

		var total int64
		if err := base().Count(&total).Error; err != nil {
			return nil, err
		}

		var rows []Playlist
		err := base().
			Order("created_at desc").
			Offset(pg.Offset()).
			Limit(pg.Limit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}

		data, err := s.enrich(ctx, rows)
		if err != nil {
			return nil, err
		}
		return &FeedPage{
			Data:    data,
			Count:   total,
			Page:    pg.Page,
			Limit:   pg.Limit,
			HasMore: pg.HasMore(total),
		}, nil
	}

	if includePrivate {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return v.(*FeedPage), nil
	}

	key := cache.Key("playlists", "feed", f.CacheKey(),
		fmt.Sprintf("pg=%d,lim=%d", pg.Page, pg.Limit))
	var out FeedPage
	if err := s.Cache.GetJSON(ctx, key, &out, load); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByUlid returns one playlist with owner, tracks and counts. Only
// public rows enter the shared detail cache; an owner reading their own
// private playlist is served uncached, and everyone else sees a private
// row as absent.
func (s *Service) GetByUlid(ctx context.Context, callerID uint64, ulidStr string) (*WithUser, error) {
	key := cache.Key("playlists", "detail", ulidStr)

	var out WithUser
	err := s.Cache.GetJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.detail(ctx, 0, ulidStr)
	})
	if err == nil {
		return &out, nil
	}
	if callerID == 0 || !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return s.detail(ctx, callerID, ulidStr)
}

func (s *Service) detail(ctx context.Context, callerID uint64, ulidStr string) (*WithUser, error) {
	p, err := s.visibleByUlid(ctx, callerID, ulidStr)
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrich(ctx, []Playlist{*p})
	if err != nil {
		return nil, err
	}
	detail := enriched[0]

	var tracks []Track
	if err := s.DB.WithContext(ctx).
		Where("playlist_id = ?", p.ID).
		Order("position asc").
		Find(&tracks).Error; err != nil {
		return nil, err
	}
	detail.Tracks = tracks
	return &detail, nil
}

// Recent is the bounded discovery list of the newest public playlists.
func (s *Service) Recent(ctx context.Context) ([]WithUser, error) {
	var out []WithUser
	err := s.Cache.GetJSON(ctx, cache.Key("playlists", "recent"), &out, func(ctx context.Context) (any, error) {
		var rows []Playlist
		err := s.DB.WithContext(ctx).
			Where("is_public = true").
			Order("created_at desc").
			Limit(BoundedListLimit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		return s.enrich(ctx, rows)
	})
	return out, err
}

// Popular orders public playlists by like count.
func (s *Service) Popular(ctx context.Context) ([]WithUser, error) {
	var out []WithUser
	err := s.Cache.GetJSON(ctx, cache.Key("playlists", "popular"), &out, func(ctx context.Context) (any, error) {
		var rows []Playlist
		err := s.DB.WithContext(ctx).Raw(`
			select p.*
			from playlists p
			left join playlist_likes l on l.playlist_id = p.id
			where p.is_public = true
			group by p.id
			order by count(l.id) desc, p.created_at desc
			limit ?
		`, BoundedListLimit).Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		return s.enrich(ctx, rows)
	})
	return out, err
}

type CreateInput struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	ContextStory  string   `json:"context_story"`
	Platform      string   `json:"platform"`
	ExternalID    *string  `json:"external_id"`
	ExternalURL   *string  `json:"external_url"`
	CoverImageURL *string  `json:"cover_image_url"`
	IsPublic      *bool    `json:"is_public"`
	Tags          []string `json:"tags"`
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Invalid("name", "name is required")
	}
	if !ValidPlatform(in.Platform) {
		return apperr.Invalid("platform", "must be one of spotify, apple, custom")
	}
	return ValidateContextStory(in.ContextStory)
}

// Create persists a playlist. The owner is always the authenticated
// caller, never client-supplied input.
func (s *Service) Create(ctx context.Context, ownerID uint64, in CreateInput) (*WithUser, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	p := Playlist{
		Ulid:          newUlid(),
		UserID:        ownerID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		ContextStory:  strings.TrimSpace(in.ContextStory),
		Platform:      in.Platform,
		ExternalID:    in.ExternalID,
		ExternalURL:   in.ExternalURL,
		CoverImageURL: in.CoverImageURL,
		IsPublic:      isPublic,
		Tags:          tags,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	enriched, err := s.enrich(ctx, []Playlist{p})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

type UpdateInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	ContextStory  *string  `json:"context_story"`
	CoverImageURL *string  `json:"cover_image_url"`
	IsPublic      *bool    `json:"is_public"`
	Tags          []string `json:"tags"`
}

// Update re-fetches the authoritative record and requires the caller
// to be its owner.
func (s *Service) Update(ctx context.Context, callerID uint64, ulidStr string, in UpdateInput) (*WithUser, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Invalid("name", "name is required")
	}
	if in.ContextStory != nil {
		if err := ValidateContextStory(*in.ContextStory); err != nil {
			return nil, err
		}
	}

	var p Playlist
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ulid = ?", ulidStr).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if p.UserID != callerID {
			return apperr.ErrForbidden
		}

		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = in.Description
		}
		if in.ContextStory != nil {
			p.ContextStory = strings.TrimSpace(*in.ContextStory)
		}
		if in.CoverImageURL != nil {
			p.CoverImageURL = in.CoverImageURL
		}
		if in.IsPublic != nil {
			p.IsPublic = *in.IsPublic
		}
		if in.Tags != nil {
			p.Tags = in.Tags
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	enriched, err := s.enrich(ctx, []Playlist{p})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// Delete removes an owned playlist; child rows go with it via FK
// cascade. Deleting a playlist that is already gone is a success so
// retried deletes stay harmless.
func (s *Service) Delete(ctx context.Context, callerID uint64, ulidStr string) error {
	var p Playlist
	err := s.DB.WithContext(ctx).Where("ulid = ?", ulidStr).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.UserID != callerID {
		return apperr.ErrForbidden
	}

	if err := s.DB.WithContext(ctx).Delete(&Playlist{}, p.ID).Error; err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Liked reports whether the caller has liked the playlist.
func (s *Service) Liked(ctx context.Context, callerID uint64, ulidStr string) (bool, error) {
	p, err := s.visibleByUlid(ctx, callerID, ulidStr)
	if err != nil {
		return false, err
	}

	var liked bool
	err = s.Cache.GetJSON(ctx, likedKey(callerID, ulidStr), &liked, func(ctx context.Context) (any, error) {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&Like{}).
			Where("user_id = ? AND playlist_id = ?", callerID, p.ID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		return n > 0, nil
	})
	return liked, err
}

// ToggleLike flips the (user, playlist) like edge atomically: the
// insert leans on the unique index, and the resulting state is derived
// from what actually happened rather than a prior read. Toggles for the
// same key are serialized through the cache coordinator, which also
// keeps the cached liked flag optimistically in sync and rolls it back
// on failure.
func (s *Service) ToggleLike(ctx context.Context, callerID uint64, ulidStr string) (bool, error) {
	p, err := s.visibleByUlid(ctx, callerID, ulidStr)
	if err != nil {
		return false, err
	}

	liked, err := s.Cache.ToggleBool(ctx, likedKey(callerID, ulidStr), func(ctx context.Context) (bool, error) {
		var nowLiked bool
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&Like{UserID: callerID, PlaylistID: p.ID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				nowLiked = true
				act := social.Activity{
					UserID:       callerID,
					ActivityType: social.ActivityLikedPlaylist,
					PlaylistID:   &p.ID,
					Metadata:     json.RawMessage("{}"),
				}
				return tx.Create(&act).Error
			}
			nowLiked = false
			return tx.Where("user_id = ? AND playlist_id = ?", callerID, p.ID).
				Delete(&Like{}).Error
		})
		return nowLiked, err
	})
	if err != nil {
		return false, err
	}

	s.invalidate(ctx)
	return liked, nil
}

// RecordPlay appends a play event. Anonymous plays are allowed.
func (s *Service) RecordPlay(ctx context.Context, callerID uint64, ulidStr, userAgent string) error {
	p, err := s.visibleByUlid(ctx, callerID, ulidStr)
	if err != nil {
		return err
	}

	play := Play{PlaylistID: p.ID}
	if callerID != 0 {
		play.UserID = &callerID
	}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		play.UserAgent = &ua
	}
	if err := s.DB.WithContext(ctx).Create(&play).Error; err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *Service) byUlid(ctx context.Context, ulidStr string) (*Playlist, error) {
	var p Playlist
	err := s.DB.WithContext(ctx).Where("ulid = ?", ulidStr).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// visibleByUlid resolves a playlist the caller may interact with:
// public, or private but owned. Private playlists of others read as
// absent rather than forbidden.
func (s *Service) visibleByUlid(ctx context.Context, callerID uint64, ulidStr string) (*Playlist, error) {
	p, err := s.byUlid(ctx, ulidStr)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic && p.UserID != callerID {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (s *Service) enrich(ctx context.Context, rows []Playlist) ([]WithUser, error) {
	out := make([]WithUser, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]uint64, 0, len(rows))
	ownerIDs := make([]uint64, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
		ownerIDs = append(ownerIDs, p.UserID)
	}

	likeCounts, err := countByPlaylist(ctx, s.DB, &Like{}, ids)
	if err != nil {
		return nil, err
	}
	playCounts, err := countByPlaylist(ctx, s.DB, &Play{}, ids)
	if err != nil {
		return nil, err
	}

	var owners []profile.Profile
	if err := s.DB.WithContext(ctx).
		Where("user_id IN ?", ownerIDs).
		Find(&owners).Error; err != nil {
		return nil, err
	}
	byOwner := make(map[uint64]OwnerSummary, len(owners))
	for _, o := range owners {
		byOwner[o.UserID] = OwnerSummary{
			UserID:    o.UserID,
			Username:  o.Username,
			AvatarURL: o.AvatarURL,
		}
	}

	for _, p := range rows {
		out = append(out, WithUser{
			Playlist:   p,
			Owner:      byOwner[p.UserID],
			LikesCount: likeCounts[p.ID],
			PlaysCount: playCounts[p.ID],
		})
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.Cache.Invalidate(ctx, "playlists")
}

func likedKey(userID uint64, ulidStr string) string {
	return cache.Key("liked", strconv.FormatUint(userID, 10), ulidStr)
}
