package playlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"mixtape/internal/apperr"
	"mixtape/internal/cache"
	"mixtape/internal/profile"
	"mixtape/internal/social"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// The service runs against an in-memory sqlite store in tests. The
// schema below mirrors the Postgres tables for everything these tests
// touch; Postgres-only predicates (tags overlap, ILIKE search) stay out
// of scope here.
var testSchema = []string{
	`create table user_profiles (
		user_id integer primary key,
		username text not null unique,
		display_name text,
		bio text,
		avatar_url text,
		is_private integer not null default 0,
		profile_completed integer not null default 0,
		created_at datetime,
		updated_at datetime
	)`,
	`create table playlists (
		id integer primary key autoincrement,
		ulid text not null unique,
		user_id integer not null,
		name text not null,
		description text,
		context_story text not null,
		platform text not null,
		external_id text,
		external_url text,
		track_count integer not null default 0,
		duration_ms integer not null default 0,
		cover_image_url text,
		is_public integer not null,
		tags text not null default '{}',
		created_at datetime,
		updated_at datetime
	)`,
	`create table playlist_tracks (
		id integer primary key autoincrement,
		playlist_id integer not null,
		track_name text not null,
		artist_name text not null,
		album_name text,
		duration_ms integer,
		external_id text,
		track_url text,
		position integer not null default 0,
		added_at datetime
	)`,
	`create table playlist_likes (
		id integer primary key autoincrement,
		user_id integer not null,
		playlist_id integer not null,
		created_at datetime,
		unique (user_id, playlist_id)
	)`,
	`create table playlist_plays (
		id integer primary key autoincrement,
		playlist_id integer not null,
		user_id integer,
		user_agent text,
		played_at datetime
	)`,
	`create table friend_activities (
		id integer primary key autoincrement,
		user_id integer not null,
		activity_type text not null,
		playlist_id integer,
		target_user_id integer,
		metadata text not null default '{}',
		created_at datetime
	)`,
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *cache.Memory) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	for _, stmt := range testSchema {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}

	mem := cache.NewMemory()
	svc := &Service{DB: gdb, Cache: cache.New(mem, time.Minute)}
	return svc, gdb, mem
}

func seedProfile(t *testing.T, gdb *gorm.DB, userID uint64, username string) {
	t.Helper()
	if err := gdb.Create(&profile.Profile{UserID: userID, Username: username}).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func mustCreate(t *testing.T, svc *Service, ownerID uint64, name, platform string, public bool) *WithUser {
	t.Helper()
	p, err := svc.Create(context.Background(), ownerID, CreateInput{
		Name:         name,
		Platform:     platform,
		ContextStory: "the story behind this one",
		IsPublic:     &public,
	})
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return p
}

func TestGetByUlid_PrivateVisibleOnlyToOwner(t *testing.T) {
	svc, gdb, mem := newTestService(t)
	ctx := context.Background()
	seedProfile(t, gdb, 1, "ana")

	created := mustCreate(t, svc, 1, "Secret Mix", PlatformCustom, false)

	if _, err := svc.GetByUlid(ctx, 0, created.Ulid); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("anonymous read of a private playlist: got %v, want ErrNotFound", err)
	}
	if _, err := svc.GetByUlid(ctx, 2, created.Ulid); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other user's read of a private playlist: got %v, want ErrNotFound", err)
	}

	got, err := svc.GetByUlid(ctx, 1, created.Ulid)
	if err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if got.Name != "Secret Mix" || got.IsPublic {
		t.Errorf("owner read = %q public=%v", got.Name, got.IsPublic)
	}

	// the private detail must never land in the shared cache
	if _, ok, _ := mem.Get(ctx, cache.Key("playlists", "detail", created.Ulid)); ok {
		t.Error("private playlist entered the shared detail cache")
	}
}

func TestGetByUlid_PublicDetailIsCached(t *testing.T) {
	svc, gdb, mem := newTestService(t)
	ctx := context.Background()
	seedProfile(t, gdb, 1, "ana")

	created := mustCreate(t, svc, 1, "Open Mix", PlatformSpotify, true)

	got, err := svc.GetByUlid(ctx, 0, created.Ulid)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Owner.Username != "ana" {
		t.Errorf("owner summary = %q", got.Owner.Username)
	}
	if _, ok, _ := mem.Get(ctx, cache.Key("playlists", "detail", created.Ulid)); !ok {
		t.Error("public detail missing from cache")
	}
}

func TestDelete_IdempotentAndOwnerChecked(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	ctx := context.Background()
	seedProfile(t, gdb, 1, "ana")

	created := mustCreate(t, svc, 1, "Doomed", PlatformCustom, true)

	if err := svc.Delete(ctx, 2, created.Ulid); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-owner delete: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, 1, created.Ulid); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	var n int64
	gdb.Model(&Playlist{}).Where("ulid = ?", created.Ulid).Count(&n)
	if n != 0 {
		t.Errorf("row still present after delete")
	}

	// deleting again is still a success
	if err := svc.Delete(ctx, 1, created.Ulid); err != nil {
		t.Errorf("second delete: got %v, want nil", err)
	}
}

func TestToggleLike_RoundTrip(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	ctx := context.Background()
	seedProfile(t, gdb, 1, "ana")
	seedProfile(t, gdb, 2, "bo")

	created := mustCreate(t, svc, 1, "Crowd Favorite", PlatformSpotify, true)

	liked, err := svc.ToggleLike(ctx, 2, created.Ulid)
	if err != nil || !liked {
		t.Fatalf("first toggle = %v, %v", liked, err)
	}

	got, err := svc.Liked(ctx, 2, created.Ulid)
	if err != nil || !got {
		t.Errorf("Liked after toggle = %v, %v", got, err)
	}
	detail, err := svc.GetByUlid(ctx, 0, created.Ulid)
	if err != nil || detail.LikesCount != 1 {
		t.Errorf("likes count = %d, %v", detail.LikesCount, err)
	}

	var acts int64
	gdb.Model(&social.Activity{}).
		Where("user_id = ? AND activity_type = ?", 2, social.ActivityLikedPlaylist).
		Count(&acts)
	if acts != 1 {
		t.Errorf("liked activity rows = %d, want 1", acts)
	}

	// second toggle restores the original state
	liked, err = svc.ToggleLike(ctx, 2, created.Ulid)
	if err != nil || liked {
		t.Fatalf("second toggle = %v, %v", liked, err)
	}
	var n int64
	gdb.Model(&Like{}).Where("playlist_id = ?", created.ID).Count(&n)
	if n != 0 {
		t.Errorf("like rows after round trip = %d, want 0", n)
	}
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	ctx := context.Background()
	seedProfile(t, gdb, 1, "ana")

	created := mustCreate(t, svc, 1, "Mine", PlatformCustom, true)

	newName := "Still Mine"
	if _, err := svc.Update(ctx, 2, created.Ulid, UpdateInput{Name: &newName}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-owner update: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Update(ctx, 1, "01ARZ3NDEKTSV4RRFFQ69G5FAV", UpdateInput{Name: &newName}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update of missing playlist: got %v, want ErrNotFound", err)
	}

	got, err := svc.Update(ctx, 1, created.Ulid, UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if got.Name != "Still Mine" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestList_FilterPredicatesAndVisibility(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	ctx := context.Background()
	seedProfile(t, gdb, 1, "ana")
	seedProfile(t, gdb, 2, "bo")

	mustCreate(t, svc, 1, "Morning Run", PlatformSpotify, true)
	mustCreate(t, svc, 1, "Diary", PlatformSpotify, false)
	mustCreate(t, svc, 2, "Road Trip", PlatformApple, true)

	// platform filter: every result matches and is public
	rows, err := svc.List(ctx, Filters{Platform: PlatformSpotify}, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("spotify results = %d, want 1", len(rows))
	}
	for _, r := range rows {
		if r.Platform != PlatformSpotify || !r.IsPublic {
			t.Errorf("result %q violates filter: platform=%s public=%v", r.Name, r.Platform, r.IsPublic)
		}
	}

	// owner listing their own content sees private rows
	rows, err = svc.List(ctx, Filters{OwnerID: 1}, 1)
	if err != nil {
		t.Fatalf("owner list failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("owner sees %d rows, want 2", len(rows))
	}

	// anyone else listing that owner sees public rows only
	rows, err = svc.List(ctx, Filters{OwnerID: 1}, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Morning Run" {
		t.Errorf("non-owner sees %d rows", len(rows))
	}
}
