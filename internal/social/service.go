package social

import (
	"context"
	"errors"

	"mixtape/internal/apperr"
	"mixtape/internal/profile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const feedLimit = 20

type Service struct {
	DB *gorm.DB
}

// ToggleFollow flips the follower->following edge. The insert relies on
// the unique (follower_id, following_id) index so concurrent toggles
// cannot double-create; the returned state reflects what actually
// happened.
func (s *Service) ToggleFollow(ctx context.Context, followerID, followingID uint64) (following bool, err error) {
	if followerID == followingID {
		return false, apperr.Invalid("user_id", "cannot follow yourself")
	}

	var target profile.Profile
	if err := s.DB.WithContext(ctx).Where("user_id = ?", followingID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := Follow{
			FollowerID:       followerID,
			FollowingID:      followingID,
			Status:           StatusConnected,
			ConnectionSource: SourceManual,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			following = true
			act := Activity{
				UserID:       followerID,
				ActivityType: ActivityFollowedUser,
				TargetUserID: &followingID,
			}
			return tx.Create(&act).Error
		}

		following = false
		return tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&Follow{}).Error
	})
	return following, err
}

// Feed lists recent activities of the users the caller follows.
// Bounded discovery list: newest first, no continuation token.
func (s *Service) Feed(ctx context.Context, userID uint64) ([]Activity, error) {
	var rows []Activity
	err := s.DB.WithContext(ctx).
		Where(`user_id IN (
			select following_id from user_follows
			where follower_id = ? and status = ?
		)`, userID, StatusConnected).
		Order("created_at desc").
		Limit(feedLimit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
