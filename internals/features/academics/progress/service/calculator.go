// file: internals/features/academics/progress/service/calculator.go
package service

import (
	"math"

	"gorm.io/datatypes"

	cprModel "pwioi_backend/internals/features/academics/curriculum/model"
	"pwioi_backend/internals/helpers/dbtime"
)

// Snapshot: dihitung ulang setiap dibaca, tidak pernah disimpan.
type Snapshot struct {
	ExpectedCompletionLecture  int     `json:"expected_completion_lecture"`
	ActualCompletionLecture    float64 `json:"actual_completion_lecture"`
	CompletionLag              float64 `json:"completion_lag"`
	CompletionPercentage       float64 `json:"completion_percentage"`
	PunctualityIssueCount      int     `json:"punctuality_issue_count"`
	PunctualityIssuePercentage float64 `json:"punctuality_issue_percentage"`
	HasCurriculumData          bool    `json:"has_curriculum_data"`

	TotalSubTopics     int `json:"total_sub_topics"`
	CompletedSubTopics int `json:"completed_sub_topics"`
	DueSubTopics       int `json:"due_sub_topics"`
}

// SubTopicState: field sub-topic yang dibutuhkan kalkulasi.
type SubTopicState struct {
	LectureNumber int
	Status        cprModel.SubTopicStatus
	PlannedStart  *datatypes.Date
	ActualStart   *datatypes.Date
}

func StatesFromModels(rows []cprModel.SubTopicModel) []SubTopicState {
	out := make([]SubTopicState, 0, len(rows))
	for _, r := range rows {
		out = append(out, SubTopicState{
			LectureNumber: r.CPRSubTopicLectureNumber,
			Status:        r.CPRSubTopicStatus,
			PlannedStart:  r.CPRSubTopicPlannedStart,
			ActualStart:   r.CPRSubTopicActualStart,
		})
	}
	return out
}

type lectureGroup struct{ completed, total int }

// Calculate: murni, `today` di-inject; semua perbandingan tanggal saja.
func Calculate(items []SubTopicState, today datatypes.Date) Snapshot {
	if len(items) == 0 {
		return Snapshot{}
	}

	snap := Snapshot{HasCurriculumData: true, TotalSubTopics: len(items)}
	groups := map[int]*lectureGroup{}

	for _, it := range items {
		g := groups[it.LectureNumber]
		if g == nil {
			g = &lectureGroup{}
			groups[it.LectureNumber] = g
		}
		g.total++
		if it.Status == cprModel.SubTopicCompleted {
			g.completed++
			snap.CompletedSubTopics++
		}

		if it.PlannedStart == nil || !dbtime.SameOrBefore(*it.PlannedStart, today) {
			continue
		}
		// due
		snap.DueSubTopics++
		if it.LectureNumber > snap.ExpectedCompletionLecture {
			snap.ExpectedCompletionLecture = it.LectureNumber
		}
		if it.ActualStart == nil || !dbtime.SameOrBefore(*it.ActualStart, *it.PlannedStart) {
			snap.PunctualityIssueCount++
		}
	}

	var actual float64
	for _, g := range groups {
		actual += ratio(float64(g.completed), float64(g.total))
	}
	snap.ActualCompletionLecture = round2(actual)
	snap.CompletionLag = round2(float64(snap.ExpectedCompletionLecture) - actual)
	snap.CompletionPercentage = math.Round(100 * ratio(float64(snap.CompletedSubTopics), float64(snap.TotalSubTopics)))
	snap.PunctualityIssuePercentage = round2(100 * ratio(float64(snap.PunctualityIssueCount), float64(snap.DueSubTopics)))
	return snap
}

// ratio: penyebut nol → 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // buang -0
	}
	return r
}
