package db

import (
	"fmt"

	"mixtape/internal/auth"
	"mixtape/internal/jobs"
	"mixtape/internal/playlist"
	"mixtape/internal/profile"
	"mixtape/internal/social"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey so handlers can tell conflicts apart from
	// outages.
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&profile.Profile{},
		&playlist.Playlist{},
		&playlist.Track{},
		&playlist.Like{},
		&playlist.Play{},
		&playlist.Share{},
		&social.Follow{},
		&social.Activity{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Like and follow edges are unique per pair; toggle mutations rely
	// on these indexes for their ON CONFLICT flips.
	if err := gdb.Exec(`create unique index if not exists uq_likes_user_playlist on playlist_likes(user_id, playlist_id);`).Error; err != nil {
		return err
	}
	if err := gdb.Exec(`create unique index if not exists uq_follows_pair on user_follows(follower_id, following_id);`).Error; err != nil {
		return err
	}

	// Tag overlap filter (GIN for text[])
	if err := gdb.Exec(`create index if not exists idx_playlists_tags on playlists using gin (tags);`).Error; err != nil {
		return err
	}

	// Deleting a playlist takes its child rows with it.
	cascades := []struct{ table, name string }{
		{"playlist_tracks", "fk_tracks_playlist"},
		{"playlist_likes", "fk_likes_playlist"},
		{"playlist_plays", "fk_plays_playlist"},
		{"playlist_shares", "fk_shares_playlist"},
	}
	for _, c := range cascades {
		if err := gdb.Exec(fmt.Sprintf(
			`alter table %s drop constraint if exists %s;`, c.table, c.name)).Error; err != nil {
			return err
		}
		if err := gdb.Exec(fmt.Sprintf(
			`alter table %s add constraint %s foreign key (playlist_id) references playlists(id) on delete cascade;`,
			c.table, c.name)).Error; err != nil {
			return err
		}
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_playlists_public_created on playlists(is_public, created_at desc);`,
		`create index if not exists idx_likes_playlist on playlist_likes(playlist_id);`,
		`create index if not exists idx_plays_playlist on playlist_plays(playlist_id);`,
		`create index if not exists idx_shares_recipient on playlist_shares(shared_with, created_at desc);`,
		`create index if not exists idx_activities_user_created on friend_activities(user_id, created_at desc);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
