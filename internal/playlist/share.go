package playlist

import (
	"context"
	"encoding/json"
	"strings"

	"mixtape/internal/apperr"
	"mixtape/internal/jobs"
	"mixtape/internal/social"

	"gorm.io/gorm"
)

type ShareInput struct {
	ShareContext string   `json:"share_context"`
	ShareType    string   `json:"share_type"`
	RecipientIDs []uint64 `json:"recipient_ids"`
}

type ShareResult struct {
	ShareType  string `json:"share_type"`
	Recipients int    `json:"recipients"`
	URL        string `json:"url"`
}

// effectiveContext picks the share-specific override when present,
// falling back to the playlist's own story.
func effectiveContext(override, story string) string {
	if c := strings.TrimSpace(override); c != "" {
		return c
	}
	return story
}

// Share fans a playlist out to recipients. The share rows, the
// activity-feed row and the notification jobs commit in a single
// transaction, so a failed fan-out leaves nothing behind.
func (s *Service) Share(ctx context.Context, callerID uint64, ulidStr string, in ShareInput) (*ShareResult, error) {
	if !validShareType(in.ShareType) {
		return nil, apperr.Invalid("share_type", "must be one of friend, public, group")
	}

	recipients := dedupeIDs(in.RecipientIDs)
	if in.ShareType != ShareTypePublic && len(recipients) == 0 {
		return nil, apperr.Invalid("recipient_ids", "at least one recipient is required")
	}

	p, err := s.visibleByUlid(ctx, callerID, ulidStr)
	if err != nil {
		return nil, err
	}

	storyCtx := effectiveContext(in.ShareContext, p.ContextStory)
	if err := ValidateContextStory(storyCtx); err != nil {
		return nil, err
	}

	var override *string
	if c := strings.TrimSpace(in.ShareContext); c != "" {
		override = &c
	}

	result := &ShareResult{ShareType: in.ShareType, URL: "/playlist/" + p.Ulid}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ShareType == ShareTypePublic {
			share := Share{
				PlaylistID:   p.ID,
				SharedBy:     callerID,
				ShareContext: override,
				ShareType:    ShareTypePublic,
			}
			if err := tx.Create(&share).Error; err != nil {
				return err
			}
		} else {
			for _, rid := range recipients {
				share := Share{
					PlaylistID:   p.ID,
					SharedBy:     callerID,
					SharedWith:   &rid,
					ShareContext: override,
					ShareType:    in.ShareType,
				}
				if err := tx.Create(&share).Error; err != nil {
					return err
				}

				job := jobs.ShareNotify(rid, share.ID)
				if err := tx.Create(&job).Error; err != nil {
					return err
				}
			}
			result.Recipients = len(recipients)
		}

		act := social.Activity{
			UserID:       callerID,
			ActivityType: social.ActivitySharedPlaylist,
			PlaylistID:   &p.ID,
			Metadata:     json.RawMessage("{}"),
		}
		return tx.Create(&act).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return result, nil
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
