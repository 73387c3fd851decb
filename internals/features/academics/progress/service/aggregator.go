// file: internals/features/academics/progress/service/aggregator.go
package service

import (
	"github.com/google/uuid"

	orgService "pwioi_backend/internals/features/academics/organization/service"
)

type Bucket string

const (
	BucketCompleted Bucket = "completed"
	BucketLagging   Bucket = "lagging"
	BucketAhead     Bucket = "ahead"
	BucketOnTrack   Bucket = "on_track"
)

// Classify: prioritas tetap completed → lagging → ahead → on_track.
func Classify(s Snapshot) Bucket {
	switch {
	case s.CompletionPercentage == 100:
		return BucketCompleted
	case s.CompletionLag > 1:
		return BucketLagging
	case s.CompletionLag < -1:
		return BucketAhead
	default:
		return BucketOnTrack
	}
}

type SubjectProgress struct {
	SubjectID   uuid.UUID `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	SubjectCode string    `json:"subject_code"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	UnitID      uuid.UUID `json:"unit_id"`
	Bucket      Bucket    `json:"bucket,omitempty"` // kosong kalau belum ada kurikulum
	Snapshot
}

type SubjectRef struct {
	SubjectID            uuid.UUID `json:"subject_id"`
	SubjectName          string    `json:"subject_name"`
	CompletionPercentage float64   `json:"completion_percentage"`
	CompletionLag        float64   `json:"completion_lag"`
}

type BucketLists struct {
	Completed []SubjectRef `json:"completed"`
	Lagging   []SubjectRef `json:"lagging"`
	Ahead     []SubjectRef `json:"ahead"`
	OnTrack   []SubjectRef `json:"on_track"`
}

type UnitSummary struct {
	UnitID                 uuid.UUID   `json:"unit_id"`
	UnitName               string      `json:"unit_name"`
	SubjectCount           int         `json:"subject_count"`
	SubjectsWithCurriculum int         `json:"subjects_with_curriculum"`
	AverageCompletion      float64     `json:"average_completion_percentage"`
	TeacherCount           int         `json:"teacher_count"`
	CompletedCount         int         `json:"completed_count"`
	LaggingCount           int         `json:"lagging_count"`
	AheadCount             int         `json:"ahead_count"`
	OnTrackCount           int         `json:"on_track_count"`
	Buckets                BucketLists `json:"buckets"`
}

func emptySummary(u orgService.Unit) UnitSummary {
	return UnitSummary{
		UnitID:   u.ID,
		UnitName: u.Name,
		Buckets: BucketLists{
			Completed: []SubjectRef{},
			Lagging:   []SubjectRef{},
			Ahead:     []SubjectRef{},
			OnTrack:   []SubjectRef{},
		},
	}
}

// Aggregate: summary per unit, index sama dengan `units`.
// Unit tanpa subject tetap muncul dengan summary nol.
// Subject dengan UnitID di luar `units` diabaikan.
// Subject tanpa kurikulum (HasCurriculumData=false) ikut SubjectCount dan
// TeacherCount, tapi tidak masuk bucket mana pun dan tidak ikut rata-rata.
func Aggregate(units []orgService.Unit, subjects []SubjectProgress) []UnitSummary {
	summaries := make([]UnitSummary, len(units))
	index := make(map[uuid.UUID]int, len(units))
	for i, u := range units {
		summaries[i] = emptySummary(u)
		index[u.ID] = i
	}

	teachers := make([]map[uuid.UUID]struct{}, len(units))
	sums := make([]float64, len(units))

	for _, sp := range subjects {
		i, ok := index[sp.UnitID]
		if !ok {
			continue
		}
		sum := &summaries[i]
		sum.SubjectCount++

		if teachers[i] == nil {
			teachers[i] = map[uuid.UUID]struct{}{}
		}
		teachers[i][sp.TeacherID] = struct{}{}

		if !sp.HasCurriculumData {
			continue
		}
		sum.SubjectsWithCurriculum++
		sums[i] += sp.CompletionPercentage

		ref := SubjectRef{
			SubjectID:            sp.SubjectID,
			SubjectName:          sp.SubjectName,
			CompletionPercentage: sp.CompletionPercentage,
			CompletionLag:        sp.CompletionLag,
		}
		switch Classify(sp.Snapshot) {
		case BucketCompleted:
			sum.Buckets.Completed = append(sum.Buckets.Completed, ref)
		case BucketLagging:
			sum.Buckets.Lagging = append(sum.Buckets.Lagging, ref)
		case BucketAhead:
			sum.Buckets.Ahead = append(sum.Buckets.Ahead, ref)
		default:
			sum.Buckets.OnTrack = append(sum.Buckets.OnTrack, ref)
		}
	}

	for i := range summaries {
		s := &summaries[i]
		s.TeacherCount = len(teachers[i])
		s.AverageCompletion = round2(ratio(sums[i], float64(s.SubjectsWithCurriculum)))
		s.CompletedCount = len(s.Buckets.Completed)
		s.LaggingCount = len(s.Buckets.Lagging)
		s.AheadCount = len(s.Buckets.Ahead)
		s.OnTrackCount = len(s.Buckets.OnTrack)
	}
	return summaries
}
