package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	cprModel "pwioi_backend/internals/features/academics/curriculum/model"
	orgModel "pwioi_backend/internals/features/academics/organization/model"
	ttModel "pwioi_backend/internals/features/academics/timetable/model"
	"pwioi_backend/internals/helpers/dbtime"
	"pwioi_backend/internals/testutil"
)

type sessionEnv struct {
	db      *gorm.DB
	svc     *SessionService
	org     *testutil.Org
	subject orgModel.SubjectModel
}

func newSessionEnv(t *testing.T) *sessionEnv {
	t.Helper()
	db := testutil.NewDB(t)
	org := testutil.SeedOrg(t, db, "PW")
	subj := testutil.AddSubject(t, db, org, "Physics", org.Teacher.TeacherID)

	svc := NewSessionService(db, time.UTC)
	svc.Now = fixedNow(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	return &sessionEnv{db: db, svc: svc, org: org, subject: subj}
}

// seedLectures: satu module/topic, satu sub-topic per lecture number.
func (e *sessionEnv) seedLectures(t *testing.T, subjectID uuid.UUID, lectures ...int) []cprModel.SubTopicModel {
	t.Helper()
	mod := cprModel.ModuleModel{CPRModuleSubjectID: subjectID, CPRModuleOrder: 1, CPRModuleName: "Mechanics"}
	if err := e.db.Create(&mod).Error; err != nil {
		t.Fatal(err)
	}
	top := cprModel.TopicModel{CPRTopicModuleID: mod.CPRModuleID, CPRTopicOrder: 1, CPRTopicName: "Kinematics"}
	if err := e.db.Create(&top).Error; err != nil {
		t.Fatal(err)
	}
	out := make([]cprModel.SubTopicModel, 0, len(lectures))
	for i, l := range lectures {
		st := cprModel.SubTopicModel{
			CPRSubTopicTopicID:       top.CPRTopicID,
			CPRSubTopicOrder:         i + 1,
			CPRSubTopicName:          "Part",
			CPRSubTopicLectureNumber: l,
		}
		if err := e.db.Create(&st).Error; err != nil {
			t.Fatal(err)
		}
		out = append(out, st)
	}
	return out
}

func (e *sessionEnv) plannedStart(t *testing.T, id uuid.UUID) string {
	t.Helper()
	var st cprModel.SubTopicModel
	if err := e.db.First(&st, "cpr_sub_topic_id = ?", id).Error; err != nil {
		t.Fatal(err)
	}
	return dbtime.FormatDate(st.CPRSubTopicPlannedStart)
}

func (e *sessionEnv) countSessions(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&ttModel.ClassSessionModel{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func week(items ...TemplateItem) GenerateInput {
	return GenerateInput{
		RangeStart: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC),
		Items:      items,
	}
}

func asConflict(t *testing.T, err error) *ConflictError {
	t.Helper()
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConflictError", err)
	}
	return ce
}

func TestGenerateAssignsPlannedDates(t *testing.T) {
	e := newSessionEnv(t)
	subs := e.seedLectures(t, e.subject.SubjectID, 1, 2, 3)

	res, err := e.svc.Generate(context.Background(), e.subject.SubjectID, week(
		TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"},
		TemplateItem{DayOfWeek: "wed", StartTime: "09:00", EndTime: "10:00", LectureNumber: "2"},
	))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Sessions) != 2 || res.Recompute.Assigned != 2 {
		t.Fatalf("sessions=%d assigned=%d", len(res.Sessions), res.Recompute.Assigned)
	}
	if got := e.plannedStart(t, subs[0].CPRSubTopicID); got != "2025-03-03" {
		t.Errorf("lecture 1 planned = %q", got)
	}
	if got := e.plannedStart(t, subs[1].CPRSubTopicID); got != "2025-03-05" {
		t.Errorf("lecture 2 planned = %q", got)
	}
	if got := e.plannedStart(t, subs[2].CPRSubTopicID); got != "" {
		t.Errorf("lecture 3 planned = %q, want empty", got)
	}
}

func TestGenerateRejectsRoomConflictAtomically(t *testing.T) {
	e := newSessionEnv(t)
	other := testutil.AddTeacher(t, e.db, "Other")
	otherSubj := testutil.AddSubject(t, e.db, e.org, "Chemistry", other.TeacherID)
	room := e.org.Room.RoomID

	ctx := context.Background()
	if _, err := e.svc.CreateSession(ctx, otherSubj.SubjectID, SessionInput{
		StartAt:       time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC),
		EndAt:         time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC),
		LectureNumber: "1",
		RoomID:        &room,
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	in := week(
		TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"},
		TemplateItem{DayOfWeek: "wed", StartTime: "09:00", EndTime: "10:00", LectureNumber: "2"},
	)
	in.RoomID = &room
	_, err := e.svc.Generate(ctx, e.subject.SubjectID, in)
	ce := asConflict(t, err)
	if ce.Resource != ResourceRoom || ce.ResourceID != room || ce.LectureNumber != "2" {
		t.Fatalf("conflict = %+v", ce)
	}
	if ce.ExistingSessionID == nil {
		t.Fatal("existing session id missing")
	}
	if n := e.countSessions(t); n != 1 {
		t.Fatalf("sessions = %d, want 1 (batch must not be partially written)", n)
	}
}

func TestGenerateRejectsTeacherConflict(t *testing.T) {
	e := newSessionEnv(t)
	second := testutil.AddSubject(t, e.db, e.org, "Maths", e.org.Teacher.TeacherID)
	ctx := context.Background()

	if _, err := e.svc.Generate(ctx, second.SubjectID, week(
		TemplateItem{DayOfWeek: "tue", StartTime: "10:00", EndTime: "11:00", LectureNumber: "1"},
	)); err != nil {
		t.Fatalf("Generate second: %v", err)
	}
	_, err := e.svc.Generate(ctx, e.subject.SubjectID, week(
		TemplateItem{DayOfWeek: "tue", StartTime: "10:30", EndTime: "11:30", LectureNumber: "1"},
	))
	if ce := asConflict(t, err); ce.Resource != ResourceTeacher {
		t.Fatalf("resource = %s, want teacher", ce.Resource)
	}
}

func TestGenerateAllowsTouchingSlots(t *testing.T) {
	e := newSessionEnv(t)
	ctx := context.Background()
	if _, err := e.svc.Generate(ctx, e.subject.SubjectID, week(
		TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"},
		TemplateItem{DayOfWeek: "mon", StartTime: "10:00", EndTime: "11:00", LectureNumber: "2"},
	)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := e.svc.Generate(ctx, e.subject.SubjectID, week(
		TemplateItem{DayOfWeek: "mon", StartTime: "11:00", EndTime: "12:00", LectureNumber: "3"},
	)); err != nil {
		t.Fatalf("Generate touching: %v", err)
	}
	if n := e.countSessions(t); n != 3 {
		t.Fatalf("sessions = %d, want 3", n)
	}
}

func TestGenerateRejectsIntraBatchOverlap(t *testing.T) {
	e := newSessionEnv(t)
	_, err := e.svc.Generate(context.Background(), e.subject.SubjectID, week(
		TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"},
		TemplateItem{DayOfWeek: "mon", StartTime: "09:30", EndTime: "10:30", LectureNumber: "2"},
	))
	if ce := asConflict(t, err); ce.Resource != ResourceBatch || ce.LectureNumber != "2" {
		t.Fatalf("conflict = %+v", ce)
	}
	if n := e.countSessions(t); n != 0 {
		t.Fatalf("sessions = %d, want 0", n)
	}
}

func TestGenerateEmptyRange(t *testing.T) {
	e := newSessionEnv(t)
	in := week(TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"})
	in.RangeStart = time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	in.RangeEnd = time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)
	res, err := e.svc.Generate(context.Background(), e.subject.SubjectID, in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Sessions) != 0 {
		t.Fatalf("sessions = %d, want 0", len(res.Sessions))
	}
}

func TestGenerateUnknownSubject(t *testing.T) {
	e := newSessionEnv(t)
	_, err := e.svc.Generate(context.Background(), uuid.New(), week(
		TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"},
	))
	var fe *fiber.Error
	if !errors.As(err, &fe) || fe.Code != fiber.StatusNotFound {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestUpdateSessionExcludesItself(t *testing.T) {
	e := newSessionEnv(t)
	subs := e.seedLectures(t, e.subject.SubjectID, 1)
	ctx := context.Background()

	s, err := e.svc.CreateSession(ctx, e.subject.SubjectID, SessionInput{
		StartAt:       time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		LectureNumber: "1",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	// geser 30 menit + pindah hari: tumpang tindih dengan slot lamanya sendiri tidak dihitung
	start := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 3, 10, 30, 0, 0, time.UTC)
	if _, err := e.svc.UpdateSession(ctx, s.ClassSessionID, SessionPatch{StartAt: &start, EndAt: &end}); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	start = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if _, err := e.svc.UpdateSession(ctx, s.ClassSessionID, SessionPatch{StartAt: &start, EndAt: &end}); err != nil {
		t.Fatalf("UpdateSession move: %v", err)
	}
	if got := e.plannedStart(t, subs[0].CPRSubTopicID); got != "2025-03-10" {
		t.Fatalf("planned after move = %q, want 2025-03-10", got)
	}
}

func TestUpdateSessionConflictsWithOthers(t *testing.T) {
	e := newSessionEnv(t)
	ctx := context.Background()
	a, err := e.svc.CreateSession(ctx, e.subject.SubjectID, SessionInput{
		StartAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), LectureNumber: "1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.CreateSession(ctx, e.subject.SubjectID, SessionInput{
		StartAt: time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), LectureNumber: "2",
	}); err != nil {
		t.Fatal(err)
	}
	end := time.Date(2025, 3, 3, 11, 30, 0, 0, time.UTC)
	_, err = e.svc.UpdateSession(ctx, a.ClassSessionID, SessionPatch{EndAt: &end})
	if ce := asConflict(t, err); ce.Resource != ResourceTeacher {
		t.Fatalf("resource = %s", ce.Resource)
	}
}

func TestDeleteSessionRecomputesPlannedDates(t *testing.T) {
	e := newSessionEnv(t)
	subs := e.seedLectures(t, e.subject.SubjectID, 1, 2)
	ctx := context.Background()

	first, err := e.svc.CreateSession(ctx, e.subject.SubjectID, SessionInput{
		StartAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), LectureNumber: "1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.CreateSession(ctx, e.subject.SubjectID, SessionInput{
		StartAt: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), LectureNumber: "1",
	}); err != nil {
		t.Fatal(err)
	}
	only2, err := e.svc.CreateSession(ctx, e.subject.SubjectID, SessionInput{
		StartAt: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC), LectureNumber: "2",
	})
	if err != nil {
		t.Fatal(err)
	}

	// lecture 1 masih punya session lain → anchor pindah ke tanggal berikutnya
	if err := e.svc.DeleteSession(ctx, first.ClassSessionID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if got := e.plannedStart(t, subs[0].CPRSubTopicID); got != "2025-03-04" {
		t.Errorf("lecture 1 planned = %q, want 2025-03-04", got)
	}

	// lecture 2 tidak punya session lagi → planned dikosongkan
	if err := e.svc.DeleteSession(ctx, only2.ClassSessionID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if got := e.plannedStart(t, subs[1].CPRSubTopicID); got != "" {
		t.Errorf("lecture 2 planned = %q, want empty", got)
	}

	if err := e.svc.DeleteSession(ctx, only2.ClassSessionID); err == nil {
		t.Fatal("second delete should be 404")
	}
}

func TestListSessionsOrderedAndPaged(t *testing.T) {
	e := newSessionEnv(t)
	ctx := context.Background()
	if _, err := e.svc.Generate(ctx, e.subject.SubjectID, week(
		TemplateItem{DayOfWeek: "fri", StartTime: "09:00", EndTime: "10:00", LectureNumber: "3"},
		TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"},
		TemplateItem{DayOfWeek: "wed", StartTime: "09:00", EndTime: "10:00", LectureNumber: "2"},
	)); err != nil {
		t.Fatal(err)
	}
	rows, total, err := e.svc.ListSessions(ctx, e.subject.SubjectID, ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("total=%d rows=%d", total, len(rows))
	}
	if rows[0].ClassSessionLectureNumber != "1" || rows[1].ClassSessionLectureNumber != "2" {
		t.Fatalf("order = %s,%s", rows[0].ClassSessionLectureNumber, rows[1].ClassSessionLectureNumber)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	e := newSessionEnv(t)
	t0 := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	cases := []SessionInput{
		{StartAt: t0, EndAt: t0, LectureNumber: "1"},
		{StartAt: t0, EndAt: t0.Add(time.Hour), LectureNumber: "  "},
		{EndAt: t0, LectureNumber: "1"},
	}
	for i, in := range cases {
		_, err := e.svc.CreateSession(context.Background(), e.subject.SubjectID, in)
		var fe *fiber.Error
		if !errors.As(err, &fe) || fe.Code != fiber.StatusBadRequest {
			t.Errorf("case %d: err = %v, want 400", i, err)
		}
	}
}

type busyLocker struct{ keys []string }

func (b *busyLocker) Lock(_ context.Context, _ time.Duration, keys ...string) (func(), error) {
	b.keys = keys
	return nil, ErrResourceBusy
}

type ttlLocker struct{ ttls []time.Duration }

func (l *ttlLocker) Lock(_ context.Context, ttl time.Duration, _ ...string) (func(), error) {
	l.ttls = append(l.ttls, ttl)
	return func() {}, nil
}

func TestLockTTLScalesWithBatch(t *testing.T) {
	e := newSessionEnv(t)
	lk := &ttlLocker{}
	e.svc.Locker = lk
	ctx := context.Background()

	if _, err := e.svc.Generate(ctx, e.subject.SubjectID, week(
		TemplateItem{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"},
		TemplateItem{DayOfWeek: "wed", StartTime: "09:00", EndTime: "10:00", LectureNumber: "2"},
		TemplateItem{DayOfWeek: "fri", StartTime: "09:00", EndTime: "10:00", LectureNumber: "3"},
	)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := e.svc.CreateSession(ctx, e.subject.SubjectID, SessionInput{
		StartAt: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
		LectureNumber: "4",
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if len(lk.ttls) != 2 || lk.ttls[0] != 3*lockPerSlot || lk.ttls[1] != 0 {
		t.Fatalf("ttls = %v", lk.ttls)
	}
}

func TestRedisLockerTTL(t *testing.T) {
	l := NewRedisLocker(nil, 15*time.Second)
	tests := []struct {
		hint, want time.Duration
	}{
		{0, 15 * time.Second},
		{lockTTL(100), 15 * time.Second},
		{lockTTL(2000), 100 * time.Second},
	}
	for _, tt := range tests {
		if got := l.ttlFor(tt.hint); got != tt.want {
			t.Errorf("ttlFor(%s) = %s, want %s", tt.hint, got, tt.want)
		}
	}
}

func TestGenerateInRequestLocation(t *testing.T) {
	e := newSessionEnv(t)
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	ctx := context.Background()
	in := GenerateInput{
		RangeStart: time.Date(2025, 3, 3, 0, 0, 0, 0, kolkata),
		RangeEnd:   time.Date(2025, 3, 9, 23, 59, 59, 0, kolkata),
		Items:      []TemplateItem{{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00", LectureNumber: "1"}},
		Location:   kolkata,
	}

	res, err := e.svc.Generate(ctx, e.subject.SubjectID, in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := time.Date(2025, 3, 3, 3, 30, 0, 0, time.UTC)
	if len(res.Sessions) != 1 || !res.Sessions[0].ClassSessionStartAt.Equal(want) {
		t.Fatalf("sessions = %+v, want start %s", res.Sessions, want)
	}

	_, err = e.svc.Generate(ctx, e.subject.SubjectID, in)
	ce := asConflict(t, err)
	if !strings.Contains(ce.Message, "Mon, 03 Mar 2025 09:00 IST") {
		t.Fatalf("message = %q, want local slot", ce.Message)
	}
}

func TestCreateSessionLockBusy(t *testing.T) {
	e := newSessionEnv(t)
	lk := &busyLocker{}
	e.svc.Locker = lk
	room := e.org.Room.RoomID

	_, err := e.svc.CreateSession(context.Background(), e.subject.SubjectID, SessionInput{
		StartAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		LectureNumber: "1", RoomID: &room,
	})
	if !errors.Is(err, ErrResourceBusy) {
		t.Fatalf("err = %v, want ErrResourceBusy", err)
	}
	want := map[string]bool{TeacherLockKey(e.org.Teacher.TeacherID): true, RoomLockKey(room): true}
	if len(lk.keys) != 2 || !want[lk.keys[0]] || !want[lk.keys[1]] {
		t.Fatalf("lock keys = %v", lk.keys)
	}
	if n := e.countSessions(t); n != 0 {
		t.Fatalf("sessions = %d, want 0", n)
	}
}
