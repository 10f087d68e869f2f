package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PurgeDeletedEnquiries removes enquiries soft-deleted before cutoff and
// reports how many rows went away.
func PurgeDeletedEnquiries(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM enquiries WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge enquiries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// StartSoftDeleteCleaner purges enquiries deleted more than retention ago,
// once per interval, until ctx is done. A non-positive interval leaves the
// cleaner off.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	if interval <= 0 {
		log.Warn("soft-delete cleaner disabled", zap.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed, err := PurgeDeletedEnquiries(ctx, db, now.Add(-retention))
				if err != nil {
					log.Error("failed to clean soft-deleted enquiries", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned soft-deleted enquiries", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
