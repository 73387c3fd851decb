// file: internals/features/academics/progress/scheduler/report_job.go
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	orgService "pwioi_backend/internals/features/academics/organization/service"
	svc "pwioi_backend/internals/features/academics/progress/service"
)

const reportTimeout = 4 * time.Minute

// AddProgressReportJob: rollup level center → satu baris log per unit.
func AddProgressReportJob(c *cron.Cron, spec string, s *svc.Service) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		if err := RunProgressReport(ctx, s); err != nil {
			log.Printf("[REPORT] failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	log.Printf("[REPORT] progress report scheduled spec=%q", spec)
	return nil
}

func RunProgressReport(ctx context.Context, s *svc.Service) error {
	r, err := s.Rollup(ctx, orgService.LevelCenter, nil)
	if err != nil {
		return err
	}
	log.Printf("[REPORT] %s ongoing_subjects=%d centers=%d", r.Today, r.OngoingSubjects, len(r.Units))
	for _, u := range r.Units {
		log.Printf("[REPORT] center=%q subjects=%d with_cpr=%d avg=%.2f%% teachers=%d completed=%d lagging=%d ahead=%d on_track=%d",
			u.UnitName, u.SubjectCount, u.SubjectsWithCurriculum, u.AverageCompletion, u.TeacherCount,
			u.CompletedCount, u.LaggingCount, u.AheadCount, u.OnTrackCount)
	}
	return nil
}
