package service

import (
	"testing"

	"github.com/google/uuid"

	orgService "pwioi_backend/internals/features/academics/organization/service"
)

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want Bucket
	}{
		{"complete beats lag", Snapshot{CompletionPercentage: 100, CompletionLag: 5}, BucketCompleted},
		{"lagging", Snapshot{CompletionPercentage: 40, CompletionLag: 1.01}, BucketLagging},
		{"lag exactly one", Snapshot{CompletionPercentage: 40, CompletionLag: 1}, BucketOnTrack},
		{"ahead", Snapshot{CompletionPercentage: 40, CompletionLag: -1.5}, BucketAhead},
		{"minus one", Snapshot{CompletionPercentage: 40, CompletionLag: -1}, BucketOnTrack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.snap); got != tc.want {
				t.Fatalf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func progress(unit, teacher uuid.UUID, pct, lag float64, hasData bool) SubjectProgress {
	return SubjectProgress{
		SubjectID: uuid.New(),
		TeacherID: teacher,
		UnitID:    unit,
		Snapshot: Snapshot{
			CompletionPercentage: pct,
			CompletionLag:        lag,
			HasCurriculumData:    hasData,
		},
	}
}

func TestAggregate(t *testing.T) {
	a, b, empty := uuid.New(), uuid.New(), uuid.New()
	t1, t2 := uuid.New(), uuid.New()
	units := []orgService.Unit{{ID: a, Name: "A"}, {ID: b, Name: "B"}, {ID: empty, Name: "Empty"}}

	got := Aggregate(units, []SubjectProgress{
		progress(a, t1, 100, 5, true),
		progress(a, t1, 50, 2, true),
		progress(a, t2, 30, -3, true),
		progress(a, t2, 0, 0, false),
		progress(b, t1, 20, 0.5, true),
		progress(uuid.New(), t1, 99, 0, true), // unit di luar scope
	})

	if len(got) != 3 {
		t.Fatalf("summaries = %d", len(got))
	}
	sa := got[0]
	if sa.SubjectCount != 4 || sa.SubjectsWithCurriculum != 3 || sa.TeacherCount != 2 {
		t.Fatalf("unit A counts = %+v", sa)
	}
	if sa.AverageCompletion != 60 {
		t.Fatalf("unit A average = %v, want 60", sa.AverageCompletion)
	}
	if sa.CompletedCount != 1 || sa.LaggingCount != 1 || sa.AheadCount != 1 || sa.OnTrackCount != 0 {
		t.Fatalf("unit A buckets = %+v", sa)
	}

	if sb := got[1]; sb.OnTrackCount != 1 || sb.AverageCompletion != 20 || sb.TeacherCount != 1 {
		t.Fatalf("unit B = %+v", sb)
	}

	se := got[2]
	if se.UnitID != empty || se.SubjectCount != 0 || se.AverageCompletion != 0 || se.TeacherCount != 0 {
		t.Fatalf("empty unit = %+v", se)
	}
	if se.Buckets.Completed == nil || se.Buckets.Lagging == nil || se.Buckets.Ahead == nil || se.Buckets.OnTrack == nil {
		t.Fatal("empty unit buckets must be non-nil lists")
	}
}
