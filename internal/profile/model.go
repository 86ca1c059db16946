package profile

import "time"

// Profile is the public identity attached to an auth user. It is
// auto-provisioned at first authentication and never hard-deleted.
type Profile struct {
	UserID           uint64    `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"uniqueIndex;size:14;not null" json:"username"`
	DisplayName      *string   `json:"display_name,omitempty"`
	Bio              *string   `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL        *string   `json:"avatar_url,omitempty"`
	IsPrivate        bool      `gorm:"not null;default:false" json:"is_private"`
	ProfileCompleted bool      `gorm:"not null;default:false" json:"profile_completed"`
	CreatedAt        time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string { return "user_profiles" }

// Stats are derived counts, computed per request and never stored.
type Stats struct {
	PlaylistsCount int64 `json:"playlists_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

type WithStats struct {
	Profile
	Stats
}
