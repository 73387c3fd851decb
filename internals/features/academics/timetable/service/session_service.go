// file: internals/features/academics/timetable/service/session_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	orgService "pwioi_backend/internals/features/academics/organization/service"
	planning "pwioi_backend/internals/features/academics/planning/service"
	"pwioi_backend/internals/features/academics/timetable/calendar"
	ttModel "pwioi_backend/internals/features/academics/timetable/model"
)

const createBatchSize = 200

/*
   SessionService = semua mutasi timetable.
   Setiap mutasi = 1 transaksi: conflict check → tulis → recompute planned date.
   Notifier kalender jalan setelah commit (fire-and-forget).
*/

type SessionService struct {
	DB         *gorm.DB
	Hierarchy  *orgService.Hierarchy
	Recomputer *planning.Recomputer
	Locker     ResourceLocker
	Notifier   calendar.Notifier

	Loc          *time.Location
	AllowPast    bool
	MaxRangeDays int
	Now          func() time.Time
}

func NewSessionService(db *gorm.DB, loc *time.Location) *SessionService {
	if loc == nil {
		loc = time.UTC
	}
	return &SessionService{
		DB:         db,
		Hierarchy:  orgService.NewHierarchy(db),
		Recomputer: planning.NewRecomputer(loc),
		Locker:     NoopLocker{},
		Notifier:   calendar.LogNotifier{},
		Loc:        loc,
		Now:        time.Now,
	}
}

/* =========================
   Input / output
========================= */

type GenerateInput struct {
	RangeStart time.Time
	RangeEnd   time.Time
	Items      []TemplateItem
	RoomID     *uuid.UUID
	AllowPast  *bool          // nil = default service
	Location   *time.Location // zona request (X-School-Timezone); nil = s.Loc
}

type GenerateResult struct {
	Sessions  []ttModel.ClassSessionModel `json:"sessions"`
	Skipped   []SkippedItem               `json:"skipped,omitempty"`
	Recompute planning.RecomputeResult    `json:"recompute"`
}

type SessionInput struct {
	StartAt       time.Time
	EndAt         time.Time
	LectureNumber string
	RoomID        *uuid.UUID
	Location      *time.Location // hanya untuk pesan konflik; nil = s.Loc
}

type SessionPatch struct {
	StartAt       *time.Time
	EndAt         *time.Time
	LectureNumber *string
	RoomID        *uuid.UUID
	ClearRoom     bool
	Location      *time.Location
}

type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

/* =========================
   Generate (batch)
========================= */

func (s *SessionService) Generate(ctx context.Context, subjectID uuid.UUID, in GenerateInput) (*GenerateResult, error) {
	subj, err := s.Hierarchy.Subject(ctx, nil, subjectID)
	if err != nil {
		return nil, err
	}
	if in.RoomID != nil {
		if err := s.Hierarchy.RoomExists(ctx, nil, *in.RoomID); err != nil {
			return nil, err
		}
	}

	allowPast := s.AllowPast
	if in.AllowPast != nil {
		allowPast = *in.AllowPast
	}
	loc := s.location(in.Location)
	gen, err := NewGenerator(in.Items, GenerateOptions{
		RangeStart:   in.RangeStart,
		RangeEnd:     in.RangeEnd,
		Location:     loc,
		AllowPast:    allowPast,
		Now:          s.now,
		MaxRangeDays: s.MaxRangeDays,
	})
	if err != nil {
		return nil, err
	}
	candidates := gen.Collect()
	res := &GenerateResult{Skipped: gen.Skipped, Sessions: []ttModel.ClassSessionModel{}}
	if len(candidates) == 0 {
		log.Printf("[Timetable.Generate] subject=%s no candidate in range", subjectID)
		return res, nil
	}

	release, err := s.lock(ctx, lockTTL(len(candidates)), subj.TeacherID, in.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	rows := make([]ttModel.ClassSessionModel, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, ttModel.ClassSessionModel{
			ClassSessionSubjectID:     subj.SubjectID,
			ClassSessionDivisionID:    subj.DivisionID,
			ClassSessionTeacherID:     subj.TeacherID,
			ClassSessionRoomID:        in.RoomID,
			ClassSessionStartAt:       c.StartAt,
			ClassSessionEndAt:         c.EndAt,
			ClassSessionLectureNumber: c.LectureNumber,
		})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := DetectConflicts(tx, ConflictQuery{
			Candidates: candidates,
			TeacherID:  subj.TeacherID,
			RoomID:     in.RoomID,
			Location:   loc,
		}); err != nil {
			return err
		}
		if err := tx.CreateInBatches(&rows, createBatchSize).Error; err != nil {
			return err
		}
		rr, err := s.Recomputer.Recompute(tx, subj.SubjectID)
		if err != nil {
			return err
		}
		res.Recompute = rr
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Sessions = rows
	log.Printf("[Timetable.Generate] subject=%s created=%d skipped_items=%d planned=%d",
		subjectID, len(rows), len(gen.Skipped), res.Recompute.Assigned)
	s.notifyUpsert(subj, rows)
	return res, nil
}

/* =========================
   Single session CRUD
========================= */

func (s *SessionService) CreateSession(ctx context.Context, subjectID uuid.UUID, in SessionInput) (*ttModel.ClassSessionModel, error) {
	c, err := sessionCandidate(in.StartAt, in.EndAt, in.LectureNumber)
	if err != nil {
		return nil, err
	}
	subj, err := s.Hierarchy.Subject(ctx, nil, subjectID)
	if err != nil {
		return nil, err
	}
	if in.RoomID != nil {
		if err := s.Hierarchy.RoomExists(ctx, nil, *in.RoomID); err != nil {
			return nil, err
		}
	}

	release, err := s.lock(ctx, 0, subj.TeacherID, in.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	row := ttModel.ClassSessionModel{
		ClassSessionSubjectID:     subj.SubjectID,
		ClassSessionDivisionID:    subj.DivisionID,
		ClassSessionTeacherID:     subj.TeacherID,
		ClassSessionRoomID:        in.RoomID,
		ClassSessionStartAt:       c.StartAt,
		ClassSessionEndAt:         c.EndAt,
		ClassSessionLectureNumber: c.LectureNumber,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := DetectConflicts(tx, ConflictQuery{
			Candidates: []Candidate{c},
			TeacherID:  subj.TeacherID,
			RoomID:     in.RoomID,
			Location:   s.location(in.Location),
		}); err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		_, err := s.Recomputer.Recompute(tx, subj.SubjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyUpsert(subj, []ttModel.ClassSessionModel{row})
	return &row, nil
}

func (s *SessionService) UpdateSession(ctx context.Context, sessionID uuid.UUID, p SessionPatch) (*ttModel.ClassSessionModel, error) {
	current, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := *current
	if p.StartAt != nil {
		next.ClassSessionStartAt = p.StartAt.UTC()
	}
	if p.EndAt != nil {
		next.ClassSessionEndAt = p.EndAt.UTC()
	}
	if p.LectureNumber != nil {
		next.ClassSessionLectureNumber = *p.LectureNumber
	}
	switch {
	case p.ClearRoom:
		next.ClassSessionRoomID = nil
	case p.RoomID != nil:
		if err := s.Hierarchy.RoomExists(ctx, nil, *p.RoomID); err != nil {
			return nil, err
		}
		next.ClassSessionRoomID = p.RoomID
	}

	c, err := sessionCandidate(next.ClassSessionStartAt, next.ClassSessionEndAt, next.ClassSessionLectureNumber)
	if err != nil {
		return nil, err
	}
	next.ClassSessionLectureNumber = c.LectureNumber

	subj, err := s.Hierarchy.Subject(ctx, nil, current.ClassSessionSubjectID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, 0, next.ClassSessionTeacherID, next.ClassSessionRoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	exclude := current.ClassSessionID
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := DetectConflicts(tx, ConflictQuery{
			Candidates: []Candidate{c},
			TeacherID:  next.ClassSessionTeacherID,
			RoomID:     next.ClassSessionRoomID,
			ExcludeID:  &exclude,
			Location:   s.location(p.Location),
		}); err != nil {
			return err
		}
		if err := tx.Model(&ttModel.ClassSessionModel{}).
			Where("class_session_id = ?", exclude).
			Updates(map[string]any{
				"class_session_start_at":       next.ClassSessionStartAt.UTC(),
				"class_session_end_at":         next.ClassSessionEndAt.UTC(),
				"class_session_lecture_number": next.ClassSessionLectureNumber,
				"class_session_room_id":        next.ClassSessionRoomID,
				"class_session_updated_at":     s.now().UTC(),
			}).Error; err != nil {
			return err
		}
		_, err := s.Recomputer.Recompute(tx, next.ClassSessionSubjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyUpsert(subj, []ttModel.ClassSessionModel{next})
	return &next, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	current, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ttModel.ClassSessionModel{}, "class_session_id = ?", sessionID).Error; err != nil {
			return err
		}
		_, err := s.Recomputer.Recompute(tx, current.ClassSessionSubjectID)
		return err
	})
	if err != nil {
		return err
	}

	n := s.notifier()
	calendar.NotifyAsync("remove "+sessionID.String(), func(ctx context.Context) error {
		return n.Remove(ctx, []uuid.UUID{sessionID})
	})
	return nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*ttModel.ClassSessionModel, error) {
	var row ttModel.ClassSessionModel
	if err := s.DB.WithContext(ctx).
		Where("class_session_id = ?", sessionID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return nil, err
	}
	return &row, nil
}

// ListSessions: urut start_at ASC; filter From/To pada start_at.
func (s *SessionService) ListSessions(ctx context.Context, subjectID uuid.UUID, f ListFilter) ([]ttModel.ClassSessionModel, int64, error) {
	if _, err := s.Hierarchy.Subject(ctx, nil, subjectID); err != nil {
		return nil, 0, err
	}
	q := s.DB.WithContext(ctx).Model(&ttModel.ClassSessionModel{}).
		Where("class_session_subject_id = ?", subjectID)
	if f.From != nil {
		q = q.Where("class_session_start_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("class_session_start_at <= ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []ttModel.ClassSessionModel{}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Order("class_session_start_at ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

/* =========================
   Helpers
========================= */

func sessionCandidate(startAt, endAt time.Time, lecture string) (Candidate, error) {
	lecture = strings.TrimSpace(lecture)
	if startAt.IsZero() || endAt.IsZero() {
		return Candidate{}, fiber.NewError(fiber.StatusBadRequest, "start_at and end_at are required")
	}
	if !endAt.After(startAt) {
		return Candidate{}, fiber.NewError(fiber.StatusBadRequest, "end_at must be after start_at")
	}
	if lecture == "" {
		return Candidate{}, fiber.NewError(fiber.StatusBadRequest, "lecture_number is required")
	}
	return Candidate{StartAt: startAt.UTC(), EndAt: endAt.UTC(), LectureNumber: lecture}, nil
}

func (s *SessionService) lock(ctx context.Context, ttl time.Duration, teacherID uuid.UUID, roomID *uuid.UUID) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	return s.Locker.Lock(ctx, ttl, lockKeys(teacherID, roomID)...)
}

// location: zona request kalau ada. Recompute tetap pakai s.Loc (zona sekolah)
// supaya planned date tidak bergantung pada request pemicunya.
func (s *SessionService) location(l *time.Location) *time.Location {
	if l != nil {
		return l
	}
	return s.Loc
}

func (s *SessionService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *SessionService) notifier() calendar.Notifier {
	if s.Notifier == nil {
		return calendar.LogNotifier{}
	}
	return s.Notifier
}

func (s *SessionService) notifyUpsert(subj *orgService.SubjectContext, rows []ttModel.ClassSessionModel) {
	if len(rows) == 0 {
		return
	}
	events := make([]calendar.SessionEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, calendar.SessionEvent{
			SessionID:     r.ClassSessionID,
			SubjectName:   subj.SubjectName,
			SubjectCode:   subj.SubjectCode,
			LectureNumber: r.ClassSessionLectureNumber,
			StartAt:       r.ClassSessionStartAt,
			EndAt:         r.ClassSessionEndAt,
		})
	}
	n := s.notifier()
	calendar.NotifyAsync("upsert "+subj.SubjectID.String(), func(ctx context.Context) error {
		return n.Upsert(ctx, events)
	})
}
