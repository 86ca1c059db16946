package social

import (
	"encoding/json"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConnected = "connected"
	StatusBlocked   = "blocked"

	SourceManual     = "manual"
	SourceSuggestion = "suggestion"
	SourceSearch     = "search"
)

const (
	ActivitySharedPlaylist = "shared_playlist"
	ActivityLikedPlaylist  = "liked_playlist"
	ActivityFollowedUser   = "followed_user"
)

// Follow is a directional edge between two users. At most one edge per
// ordered pair; self-follows are rejected at the write boundary.
type Follow struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	FollowerID  uint64 `gorm:"index;not null" json:"follower_id"`
	FollowingID uint64 `gorm:"index;not null" json:"following_id"`
	// advisory taste-overlap score, 0-100; not load-bearing
	CompatibilityScore int       `gorm:"not null;default:0" json:"compatibility_score"`
	ConnectionSource   string    `gorm:"not null;default:'manual'" json:"connection_source"`
	Status             string    `gorm:"not null;default:'connected'" json:"status"`
	CreatedAt          time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Follow) TableName() string { return "user_follows" }

// Activity is an append-only feed row.
type Activity struct {
	ID           uint64          `gorm:"primaryKey" json:"id"`
	UserID       uint64          `gorm:"index;not null" json:"user_id"`
	ActivityType string          `gorm:"not null" json:"activity_type"`
	PlaylistID   *uint64         `gorm:"index" json:"playlist_id,omitempty"`
	TargetUserID *uint64         `json:"target_user_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb;not null;default:'{}'::jsonb" json:"activity_metadata"`
	CreatedAt    time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

func (Activity) TableName() string { return "friend_activities" }
