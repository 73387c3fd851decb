// file: internals/features/academics/timetable/dto/class_session_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "pwioi_backend/internals/features/academics/timetable/model"
	svc "pwioi_backend/internals/features/academics/timetable/service"
)

/* =========================
   Requests
========================= */

// GenerateSessionsRequest: from/to = "YYYY-MM-DD" (atau RFC3339), di timezone sekolah.
type GenerateSessionsRequest struct {
	From      string             `json:"from" validate:"required"`
	To        string             `json:"to" validate:"required"`
	RoomID    *uuid.UUID         `json:"room_id"`
	AllowPast *bool              `json:"allow_past"`
	Items     []svc.TemplateItem `json:"items" validate:"required,min=1"`
}

type CreateSessionRequest struct {
	StartAt       time.Time  `json:"start_at" validate:"required"`
	EndAt         time.Time  `json:"end_at" validate:"required,gtfield=StartAt"`
	LectureNumber string     `json:"lecture_number" validate:"required,max=20"`
	RoomID        *uuid.UUID `json:"room_id"`
}

func (r CreateSessionRequest) ToInput() svc.SessionInput {
	return svc.SessionInput{
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		LectureNumber: r.LectureNumber,
		RoomID:        r.RoomID,
	}
}

type PatchSessionRequest struct {
	StartAt       *time.Time `json:"start_at"`
	EndAt         *time.Time `json:"end_at"`
	LectureNumber *string    `json:"lecture_number" validate:"omitempty,max=20"`
	RoomID        *uuid.UUID `json:"room_id"`
	ClearRoom     bool       `json:"clear_room"`
}

func (r PatchSessionRequest) ToPatch() svc.SessionPatch {
	return svc.SessionPatch{
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		LectureNumber: r.LectureNumber,
		RoomID:        r.RoomID,
		ClearRoom:     r.ClearRoom,
	}
}

/* =========================
   Responses
========================= */

type ClassSessionResponse struct {
	ID            uuid.UUID  `json:"class_session_id"`
	SubjectID     uuid.UUID  `json:"class_session_subject_id"`
	DivisionID    uuid.UUID  `json:"class_session_division_id"`
	TeacherID     uuid.UUID  `json:"class_session_teacher_id"`
	RoomID        *uuid.UUID `json:"class_session_room_id,omitempty"`
	StartAt       time.Time  `json:"class_session_start_at"`
	EndAt         time.Time  `json:"class_session_end_at"`
	LectureNumber string     `json:"class_session_lecture_number"`
}

// FromModel: waktu dikonversi ke timezone sekolah untuk tampilan.
func FromModel(s m.ClassSessionModel, loc *time.Location) ClassSessionResponse {
	if loc == nil {
		loc = time.UTC
	}
	return ClassSessionResponse{
		ID:            s.ClassSessionID,
		SubjectID:     s.ClassSessionSubjectID,
		DivisionID:    s.ClassSessionDivisionID,
		TeacherID:     s.ClassSessionTeacherID,
		RoomID:        s.ClassSessionRoomID,
		StartAt:       s.ClassSessionStartAt.In(loc),
		EndAt:         s.ClassSessionEndAt.In(loc),
		LectureNumber: s.ClassSessionLectureNumber,
	}
}

func FromModels(rows []m.ClassSessionModel, loc *time.Location) []ClassSessionResponse {
	out := make([]ClassSessionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r, loc))
	}
	return out
}

type GenerateSessionsResponse struct {
	Created         int                    `json:"created"`
	Sessions        []ClassSessionResponse `json:"sessions"`
	Skipped         []svc.SkippedItem      `json:"skipped_items,omitempty"`
	PlannedAssigned int                    `json:"planned_sub_topics"`
}
