// file: internals/features/academics/services.go
package academics

import (
	"time"

	"gorm.io/gorm"

	cprService "pwioi_backend/internals/features/academics/curriculum/service"
	progressService "pwioi_backend/internals/features/academics/progress/service"
	"pwioi_backend/internals/features/academics/timetable/calendar"
	ttService "pwioi_backend/internals/features/academics/timetable/service"
)

type Options struct {
	Location       *time.Location
	AllowPastSlots bool
	MaxRangeDays   int
	Locker         ttService.ResourceLocker
	Notifier       calendar.Notifier
	Now            func() time.Time
}

// Services: satu instance per proses (HTTP server, CLI, cron).
type Services struct {
	Sessions   *ttService.SessionService
	Curriculum *cprService.Store
	Progress   *progressService.Service
}

func NewServices(db *gorm.DB, o Options) *Services {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}

	sessions := ttService.NewSessionService(db, loc)
	sessions.AllowPast = o.AllowPastSlots
	sessions.MaxRangeDays = o.MaxRangeDays
	sessions.Now = now
	if o.Locker != nil {
		sessions.Locker = o.Locker
	}
	if o.Notifier != nil {
		sessions.Notifier = o.Notifier
	}

	store := cprService.NewStore(db, loc)
	store.Now = now

	progress := progressService.NewService(db, loc)
	progress.Store = store
	progress.Now = now

	return &Services{Sessions: sessions, Curriculum: store, Progress: progress}
}
