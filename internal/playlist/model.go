package playlist

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

const (
	PlatformSpotify = "spotify"
	PlatformApple   = "apple"
	PlatformCustom  = "custom"
)

func ValidPlatform(p string) bool {
	switch p {
	case PlatformSpotify, PlatformApple, PlatformCustom:
		return true
	}
	return false
}

const (
	ShareTypeFriend = "friend"
	ShareTypePublic = "public"
	ShareTypeGroup  = "group"
)

func validShareType(t string) bool {
	switch t {
	case ShareTypeFriend, ShareTypePublic, ShareTypeGroup:
		return true
	}
	return false
}

// Playlist rows keep a serial PK for joins and a ULID as the public
// identifier used in URLs.
type Playlist struct {
	ID            uint64         `gorm:"primaryKey" json:"-"`
	Ulid          string         `gorm:"uniqueIndex;size:26;not null" json:"id"`
	UserID        uint64         `gorm:"index;not null" json:"user_id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   *string        `gorm:"type:text" json:"description,omitempty"`
	ContextStory  string         `gorm:"type:text;not null" json:"context_story"`
	Platform      string         `gorm:"index;not null" json:"platform"`
	ExternalID    *string        `json:"external_id,omitempty"`
	ExternalURL   *string        `json:"external_url,omitempty"`
	TrackCount    int            `gorm:"not null;default:0" json:"track_count"`
	DurationMS    int64          `gorm:"not null;default:0" json:"duration_ms"`
	CoverImageURL *string        `json:"cover_image_url,omitempty"`
	IsPublic      bool           `gorm:"index;not null" json:"is_public"`
	Tags          pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	CreatedAt     time.Time      `gorm:"index;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Playlist) TableName() string { return "playlists" }

type Track struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	PlaylistID uint64    `gorm:"index;not null" json:"-"`
	TrackName  string    `gorm:"not null" json:"track_name"`
	ArtistName string    `gorm:"not null" json:"artist_name"`
	AlbumName  *string   `json:"album_name,omitempty"`
	DurationMS *int64    `json:"duration_ms,omitempty"`
	ExternalID *string   `json:"external_id,omitempty"`
	TrackURL   *string   `json:"track_url,omitempty"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	AddedAt    time.Time `gorm:"not null;default:now()" json:"added_at"`
}

func (Track) TableName() string { return "playlist_tracks" }

// Like is a (user, playlist) fact. Unique per pair.
type Like struct {
	ID         uint64    `gorm:"primaryKey"`
	UserID     uint64    `gorm:"index;not null"`
	PlaylistID uint64    `gorm:"index;not null"`
	CreatedAt  time.Time `gorm:"not null;default:now()"`
}

func (Like) TableName() string { return "playlist_likes" }

// Play is append-only; anonymous plays carry no user id.
type Play struct {
	ID         uint64    `gorm:"primaryKey"`
	PlaylistID uint64    `gorm:"index;not null"`
	UserID     *uint64   `gorm:"index"`
	UserAgent  *string   `gorm:"type:text"`
	PlayedAt   time.Time `gorm:"not null;default:now()"`
}

func (Play) TableName() string { return "playlist_plays" }

type Share struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	PlaylistID   uint64    `gorm:"index;not null" json:"-"`
	SharedBy     uint64    `gorm:"index;not null" json:"shared_by"`
	SharedWith   *uint64   `gorm:"index" json:"shared_with,omitempty"`
	ShareContext *string   `gorm:"type:text" json:"share_context,omitempty"`
	ShareType    string    `gorm:"not null" json:"share_type"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Share) TableName() string { return "playlist_shares" }

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newUlid() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
