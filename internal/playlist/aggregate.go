package playlist

import (
	"context"

	"gorm.io/gorm"
)

type countRow struct {
	PlaylistID uint64
	N          int64
}

// countByPlaylist aggregates child rows per playlist id on the store
// side. Playlists with no children simply miss the map; readers treat
// a miss as zero.
func countByPlaylist(ctx context.Context, db *gorm.DB, model any, ids []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := db.WithContext(ctx).
		Model(model).
		Select("playlist_id, count(*) as n").
		Where("playlist_id IN ?", ids).
		Group("playlist_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.PlaylistID] = r.N
	}
	return counts, nil
}
