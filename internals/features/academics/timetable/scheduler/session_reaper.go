// file: internals/features/academics/timetable/scheduler/session_reaper.go
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	ttModel "pwioi_backend/internals/features/academics/timetable/model"
)

// AddSessionReaperJob: hard-delete class session yang soft-deleted lebih tua dari retention.
func AddSessionReaperJob(c *cron.Cron, spec string, db *gorm.DB, retention time.Duration) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := PurgeDeletedSessions(ctx, db, time.Now().Add(-retention)); err != nil {
			log.Printf("[SESSION-REAPER] error: %v", err)
		}
	})
	if err != nil {
		return err
	}
	log.Printf("[SESSION-REAPER] scheduled spec=%q retention=%s", spec, retention)
	return nil
}

func PurgeDeletedSessions(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Unscoped().
		Where("class_session_deleted_at IS NOT NULL AND class_session_deleted_at < ?", cutoff.UTC()).
		Delete(&ttModel.ClassSessionModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[SESSION-REAPER] hard-deleted %d sessions deleted before %s", res.RowsAffected, cutoff.Format(time.RFC3339))
	}
	return res.RowsAffected, nil
}
