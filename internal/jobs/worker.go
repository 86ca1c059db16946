package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"gorm.io/gorm"
)

type Worker struct {
	ID   string
	Repo *Repo
	DB   *gorm.DB
}

const jobTimeout = 10 * time.Second

type shareRow struct {
	ID           uint64  `gorm:"column:id"`
	PlaylistID   uint64  `gorm:"column:playlist_id"`
	SharedBy     uint64  `gorm:"column:shared_by"`
	SharedWith   *uint64 `gorm:"column:shared_with"`
	ShareContext *string `gorm:"column:share_context"`
}

func (shareRow) TableName() string { return "playlist_shares" }

type playlistRow struct {
	ID   uint64 `gorm:"column:id"`
	Ulid string `gorm:"column:ulid"`
	Name string `gorm:"column:name"`
}

func (playlistRow) TableName() string { return "playlists" }

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Printf("worker claim error: %v\n", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	switch job.Type {
	case TypeShareNotify:
		w.handleShareNotify(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleShareNotify(ctx context.Context, job *Job) {
	type payload struct {
		ShareID uint64 `json:"share_id"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	var share shareRow
	if err := w.DB.WithContext(ctx).
		Where("id = ?", p.ShareID).
		First(&share).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			// share was deleted with its playlist; nothing to deliver
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	var pl playlistRow
	if err := w.DB.WithContext(ctx).
		Where("id = ?", share.PlaylistID).
		First(&pl).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	log.Printf("[SHARE] recipient=%d playlist=%q (/playlist/%s) from=%d\n",
		job.UserID, pl.Name, pl.Ulid, share.SharedBy)
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
