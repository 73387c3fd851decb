// file: internals/features/academics/timetable/service/conflict.go
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	ttModel "pwioi_backend/internals/features/academics/timetable/model"
)

const (
	ResourceRoom    = "room"
	ResourceTeacher = "teacher"
	ResourceBatch   = "batch"
)

const humanSlotLayout = "Mon, 02 Jan 2006 15:04 MST"

// ConflictError: slot pertama yang bentrok. Dipetakan ke HTTP 409.
type ConflictError struct {
	Resource          string     `json:"resource"`
	ResourceID        uuid.UUID  `json:"resource_id"`
	SlotStart         time.Time  `json:"slot_start"`
	SlotEnd           time.Time  `json:"slot_end"`
	LectureNumber     string     `json:"lecture_number"`
	ExistingSessionID *uuid.UUID `json:"existing_session_id,omitempty"`
	Message           string     `json:"message"`
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ConflictQuery: satu batch candidate untuk satu teacher (+ room opsional).
type ConflictQuery struct {
	Candidates []Candidate
	TeacherID  uuid.UUID
	RoomID     *uuid.UUID
	ExcludeID  *uuid.UUID // session yang sedang di-update
	Location   *time.Location
}

type existingSlot struct {
	ID      uuid.UUID `gorm:"column:class_session_id"`
	StartAt time.Time `gorm:"column:class_session_start_at"`
	EndAt   time.Time `gorm:"column:class_session_end_at"`
}

// DetectConflicts: abort-on-first-conflict. nil = batch aman untuk di-commit.
// Check-then-act: pemanggil harus menulis di transaksi yang sama.
func DetectConflicts(tx *gorm.DB, q ConflictQuery) error {
	if len(q.Candidates) == 0 {
		return nil
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}

	if c, other, ok := firstIntraBatchOverlap(q.Candidates); ok {
		return &ConflictError{
			Resource:      ResourceBatch,
			ResourceID:    q.TeacherID,
			SlotStart:     c.StartAt,
			SlotEnd:       c.EndAt,
			LectureNumber: c.LectureNumber,
			Message: fmt.Sprintf("slot %s overlaps slot %s in the same request",
				formatSlot(c, loc), formatSlot(other, loc)),
		}
	}

	winStart, winEnd := window(q.Candidates)

	var roomSlots []existingSlot
	if q.RoomID != nil {
		var err error
		roomSlots, err = loadSlots(tx, "class_session_room_id", *q.RoomID, winStart, winEnd, q.ExcludeID)
		if err != nil {
			return err
		}
	}
	teacherSlots, err := loadSlots(tx, "class_session_teacher_id", q.TeacherID, winStart, winEnd, q.ExcludeID)
	if err != nil {
		return err
	}

	for _, c := range q.Candidates {
		if q.RoomID != nil {
			if hit, ok := firstOverlap(roomSlots, c); ok {
				return newConflict(ResourceRoom, *q.RoomID, c, hit, loc)
			}
		}
		if hit, ok := firstOverlap(teacherSlots, c); ok {
			return newConflict(ResourceTeacher, q.TeacherID, c, hit, loc)
		}
	}
	return nil
}

func loadSlots(tx *gorm.DB, column string, id uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]existingSlot, error) {
	q := tx.Model(&ttModel.ClassSessionModel{}).
		Select("class_session_id, class_session_start_at, class_session_end_at").
		Where(column+" = ?", id).
		Where("class_session_start_at < ? AND class_session_end_at > ?", to.UTC(), from.UTC())
	if exclude != nil {
		q = q.Where("class_session_id <> ?", *exclude)
	}
	var out []existingSlot
	if err := q.Order("class_session_start_at ASC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func firstOverlap(slots []existingSlot, c Candidate) (existingSlot, bool) {
	ci := c.Interval()
	for _, s := range slots {
		if Overlaps(Interval{Start: s.StartAt, End: s.EndAt}, ci) {
			return s, true
		}
	}
	return existingSlot{}, false
}

// firstIntraBatchOverlap: candidate pertama (urutan input) yang menabrak candidate sebelumnya.
func firstIntraBatchOverlap(cs []Candidate) (Candidate, Candidate, bool) {
	for i := 1; i < len(cs); i++ {
		ci := cs[i].Interval()
		for j := 0; j < i; j++ {
			if Overlaps(cs[j].Interval(), ci) {
				return cs[i], cs[j], true
			}
		}
	}
	return Candidate{}, Candidate{}, false
}

func window(cs []Candidate) (time.Time, time.Time) {
	from, to := cs[0].StartAt, cs[0].EndAt
	for _, c := range cs[1:] {
		if c.StartAt.Before(from) {
			from = c.StartAt
		}
		if c.EndAt.After(to) {
			to = c.EndAt
		}
	}
	return from, to
}

func newConflict(resource string, resourceID uuid.UUID, c Candidate, hit existingSlot, loc *time.Location) *ConflictError {
	id := hit.ID
	return &ConflictError{
		Resource:          resource,
		ResourceID:        resourceID,
		SlotStart:         c.StartAt,
		SlotEnd:           c.EndAt,
		LectureNumber:     c.LectureNumber,
		ExistingSessionID: &id,
		Message: fmt.Sprintf("%s is already booked at %s (lecture %s)",
			resource, formatSlot(c, loc), c.LectureNumber),
	}
}

func formatSlot(c Candidate, loc *time.Location) string {
	return fmt.Sprintf("%s - %s", c.StartAt.In(loc).Format(humanSlotLayout), c.EndAt.In(loc).Format("15:04"))
}
