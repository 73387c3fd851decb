// file: internals/features/academics/planning/service/recompute.go
package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	cprModel "pwioi_backend/internals/features/academics/curriculum/model"
	ttModel "pwioi_backend/internals/features/academics/timetable/model"
	"pwioi_backend/internals/helpers/dbtime"
)

/*
   Recomputer = penurunan planned date sub-topic dari timetable.

   Selalu dipanggil DI DALAM transaksi pemicunya (create/update/delete session,
   atau replace curriculum). Strategi reset-lalu-assign: tidak ada planned date
   basi yang bisa selamat dari perubahan timetable.
*/

const updateChunk = 500

type Recomputer struct {
	// Lokasi untuk mengambil "tanggal" dari start_at (UTC di DB)
	Loc *time.Location
}

func NewRecomputer(loc *time.Location) *Recomputer {
	if loc == nil {
		loc = time.UTC
	}
	return &Recomputer{Loc: loc}
}

type RecomputeResult struct {
	SubTopics int // total sub-topic subject
	Assigned  int // sub-topic yang dapat planned date
	Lectures  int // jumlah grup lecture yang punya session
}

type subTopicRef struct {
	ID            uuid.UUID `gorm:"column:cpr_sub_topic_id"`
	LectureNumber int       `gorm:"column:cpr_sub_topic_lecture_number"`
}

func (r *Recomputer) Recompute(tx *gorm.DB, subjectID uuid.UUID) (RecomputeResult, error) {
	var res RecomputeResult

	var refs []subTopicRef
	if err := tx.Table("cpr_sub_topics st").
		Select("st.cpr_sub_topic_id, st.cpr_sub_topic_lecture_number").
		Joins("JOIN cpr_topics t ON t.cpr_topic_id = st.cpr_sub_topic_topic_id").
		Joins("JOIN cpr_modules m ON m.cpr_module_id = t.cpr_topic_module_id").
		Where("m.cpr_module_subject_id = ?", subjectID).
		Scan(&refs).Error; err != nil {
		return res, err
	}
	res.SubTopics = len(refs)
	if len(refs) == 0 {
		return res, nil
	}

	// 1) reset semua
	allIDs := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		allIDs = append(allIDs, ref.ID)
	}
	if err := updateInChunks(tx, allIDs, map[string]any{
		"cpr_sub_topic_planned_start": nil,
		"cpr_sub_topic_planned_end":   nil,
	}); err != nil {
		return res, err
	}

	// 2) anchor = min(start_at) per lecture number
	var sessions []ttModel.ClassSessionModel
	if err := tx.
		Select("class_session_id", "class_session_lecture_number", "class_session_start_at").
		Where("class_session_subject_id = ?", subjectID).
		Find(&sessions).Error; err != nil {
		return res, err
	}
	anchors := AnchorDates(sessions, r.Loc)
	res.Lectures = len(anchors)
	if len(anchors) == 0 {
		return res, nil
	}

	// 3) assign ke sub-topic yang lecture number-nya cocok
	byLecture := map[int][]uuid.UUID{}
	for _, ref := range refs {
		if _, ok := anchors[ref.LectureNumber]; ok {
			byLecture[ref.LectureNumber] = append(byLecture[ref.LectureNumber], ref.ID)
		}
	}

	lectures := make([]int, 0, len(byLecture))
	for l := range byLecture {
		lectures = append(lectures, l)
	}
	sort.Ints(lectures)

	for _, l := range lectures {
		anchor := anchors[l]
		ids := byLecture[l]
		if err := updateInChunks(tx, ids, map[string]any{
			"cpr_sub_topic_planned_start": anchor,
			"cpr_sub_topic_planned_end":   anchor,
		}); err != nil {
			return res, err
		}
		res.Assigned += len(ids)
	}
	return res, nil
}

// AnchorDates: lecture number → tanggal (di loc) dari session paling awal.
// Lecture number yang bukan integer tidak pernah cocok dengan sub-topic.
func AnchorDates(sessions []ttModel.ClassSessionModel, loc *time.Location) map[int]datatypes.Date {
	if loc == nil {
		loc = time.UTC
	}
	earliest := map[int]time.Time{}
	for _, s := range sessions {
		n, ok := ParseLectureNumber(s.ClassSessionLectureNumber)
		if !ok {
			continue
		}
		if cur, seen := earliest[n]; !seen || s.ClassSessionStartAt.Before(cur) {
			earliest[n] = s.ClassSessionStartAt
		}
	}
	out := make(map[int]datatypes.Date, len(earliest))
	for n, t := range earliest {
		out[n] = dbtime.DateOf(t, loc)
	}
	return out
}

func ParseLectureNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func updateInChunks(tx *gorm.DB, ids []uuid.UUID, values map[string]any) error {
	for start := 0; start < len(ids); start += updateChunk {
		end := start + updateChunk
		if end > len(ids) {
			end = len(ids)
		}
		if err := tx.Model(&cprModel.SubTopicModel{}).
			Where("cpr_sub_topic_id IN ?", ids[start:end]).
			Updates(values).Error; err != nil {
			return err
		}
	}
	return nil
}
