package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cprModel "pwioi_backend/internals/features/academics/curriculum/model"
	ttModel "pwioi_backend/internals/features/academics/timetable/model"
	"pwioi_backend/internals/helpers/dbtime"
	"pwioi_backend/internals/testutil"
)

func session(lecture string, start time.Time) ttModel.ClassSessionModel {
	return ttModel.ClassSessionModel{ClassSessionLectureNumber: lecture, ClassSessionStartAt: start, ClassSessionEndAt: start.Add(time.Hour)}
}

func TestAnchorDates(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata: %v", err)
	}
	got := AnchorDates([]ttModel.ClassSessionModel{
		session("1", time.Date(2025, 3, 5, 4, 0, 0, 0, time.UTC)),
		session(" 1 ", time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC)),
		// 20:00 UTC = 01:30 hari berikutnya di Kolkata
		session("2", time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)),
		session("intro", time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC)),
		session("0", time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC)),
	}, kolkata)

	if len(got) != 2 {
		t.Fatalf("anchors = %v, want 2 lectures", got)
	}
	d1, d2 := got[1], got[2]
	if s := dbtime.FormatDate(&d1); s != "2025-03-03" {
		t.Errorf("lecture 1 = %s", s)
	}
	if s := dbtime.FormatDate(&d2); s != "2025-03-04" {
		t.Errorf("lecture 2 = %s", s)
	}
}

func TestParseLectureNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true}, {" 12 ", 12, true}, {"0", 0, false}, {"-3", 0, false}, {"1.5", 0, false}, {"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseLectureNumber(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseLectureNumber(%q) = %d, %v", tc.in, got, ok)
		}
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	org := testutil.SeedOrg(t, db, "PW")
	subj := testutil.AddSubject(t, db, org, "Physics", org.Teacher.TeacherID)

	mod := cprModel.ModuleModel{CPRModuleSubjectID: subj.SubjectID, CPRModuleOrder: 1, CPRModuleName: "M"}
	mustCreate(t, db, &mod)
	top := cprModel.TopicModel{CPRTopicModuleID: mod.CPRModuleID, CPRTopicOrder: 1, CPRTopicName: "T"}
	mustCreate(t, db, &top)

	stale := dbtime.DateOf(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	subs := []cprModel.SubTopicModel{
		{CPRSubTopicTopicID: top.CPRTopicID, CPRSubTopicOrder: 1, CPRSubTopicName: "a", CPRSubTopicLectureNumber: 1},
		{CPRSubTopicTopicID: top.CPRTopicID, CPRSubTopicOrder: 2, CPRSubTopicName: "b", CPRSubTopicLectureNumber: 1},
		// planned basi tanpa session pendukung harus dibersihkan
		{CPRSubTopicTopicID: top.CPRTopicID, CPRSubTopicOrder: 3, CPRSubTopicName: "c", CPRSubTopicLectureNumber: 4,
			CPRSubTopicPlannedStart: &stale, CPRSubTopicPlannedEnd: &stale},
	}
	for i := range subs {
		mustCreate(t, db, &subs[i])
	}
	s := ttModel.ClassSessionModel{
		ClassSessionSubjectID:     subj.SubjectID,
		ClassSessionDivisionID:    org.Division.DivisionID,
		ClassSessionTeacherID:     org.Teacher.TeacherID,
		ClassSessionStartAt:       time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		ClassSessionEndAt:         time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		ClassSessionLectureNumber: "1",
	}
	mustCreate(t, db, &s)

	r := NewRecomputer(time.UTC)
	for round := 0; round < 2; round++ {
		res, err := r.Recompute(db, subj.SubjectID)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if res.SubTopics != 3 || res.Assigned != 2 || res.Lectures != 1 {
			t.Fatalf("round %d: result = %+v", round, res)
		}
		want := []string{"2025-03-03", "2025-03-03", ""}
		for i, st := range subs {
			if got := planned(t, db, st.CPRSubTopicID); got != want[i] {
				t.Errorf("round %d sub-topic %d planned = %q, want %q", round, i, got, want[i])
			}
		}
	}
}

func planned(t *testing.T, db *gorm.DB, id uuid.UUID) string {
	t.Helper()
	var st cprModel.SubTopicModel
	if err := db.First(&st, "cpr_sub_topic_id = ?", id).Error; err != nil {
		t.Fatal(err)
	}
	if dbtime.FormatDate(st.CPRSubTopicPlannedStart) != dbtime.FormatDate(st.CPRSubTopicPlannedEnd) {
		t.Fatalf("planned start/end differ for %s", id)
	}
	return dbtime.FormatDate(st.CPRSubTopicPlannedStart)
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}
