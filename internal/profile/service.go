package profile

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"mixtape/internal/apperr"

	"gorm.io/gorm"
)

const bioMaxRunes = 500

type Service struct {
	DB *gorm.DB
}

func (s *Service) Get(ctx context.Context, userID uint64) (*Profile, error) {
	var p Profile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreate provisions a profile at first authentication. The
// username is derived from the email local part with a numeric suffix
// on collision.
func (s *Service) GetOrCreate(ctx context.Context, userID uint64, email string) (*Profile, error) {
	p, err := s.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	username, err := GenerateUsername(email, func(candidate string) (bool, error) {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&Profile{}).
			Where("username = ?", candidate).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	})
	if err != nil {
		return nil, err
	}

	created := Profile{UserID: userID, Username: username}
	if err := s.DB.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

type UpdateInput struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	IsPrivate   *bool   `json:"is_private"`
}

func (in UpdateInput) validate() error {
	if in.Username != nil && !ValidUsername(*in.Username) {
		return apperr.Invalid("username", "must be 3-14 characters of letters, digits or underscore")
	}
	if in.Bio != nil && utf8.RuneCountInString(*in.Bio) > bioMaxRunes {
		return apperr.Invalid("bio", "must be at most 500 characters")
	}
	return nil
}

func (s *Service) Update(ctx context.Context, userID uint64, in UpdateInput) (*Profile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var p Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}

		if in.Username != nil {
			p.Username = *in.Username
		}
		if in.DisplayName != nil {
			p.DisplayName = in.DisplayName
		}
		if in.Bio != nil {
			p.Bio = in.Bio
		}
		if in.AvatarURL != nil {
			p.AvatarURL = in.AvatarURL
		}
		if in.IsPrivate != nil {
			p.IsPrivate = *in.IsPrivate
		}
		p.ProfileCompleted = p.DisplayName != nil && strings.TrimSpace(derefStr(p.DisplayName)) != ""

		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) ByUsername(ctx context.Context, username string) (*Profile, error) {
	var p Profile
	err := s.DB.WithContext(ctx).Where("username = ?", username).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Stats counts public playlists and follow edges for a profile.
func (s *Service) Stats(ctx context.Context, userID uint64) (Stats, error) {
	var st Stats
	db := s.DB.WithContext(ctx)

	if err := db.Table("playlists").
		Where("user_id = ? AND is_public = true", userID).
		Count(&st.PlaylistsCount).Error; err != nil {
		return st, err
	}
	if err := db.Table("user_follows").
		Where("following_id = ?", userID).
		Count(&st.FollowersCount).Error; err != nil {
		return st, err
	}
	if err := db.Table("user_follows").
		Where("follower_id = ?", userID).
		Count(&st.FollowingCount).Error; err != nil {
		return st, err
	}
	return st, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
