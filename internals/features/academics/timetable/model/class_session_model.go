// file: internals/features/academics/timetable/model/class_session_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Model: ClassSessionModel
   Instance konkret (sudah resolve timezone), disimpan dalam UTC.
========================= */

type ClassSessionModel struct {
	ClassSessionID         uuid.UUID  `gorm:"type:uuid;primaryKey;column:class_session_id" json:"class_session_id"`
	ClassSessionSubjectID  uuid.UUID  `gorm:"type:uuid;not null;index;column:class_session_subject_id" json:"class_session_subject_id"`
	ClassSessionDivisionID uuid.UUID  `gorm:"type:uuid;not null;index;column:class_session_division_id" json:"class_session_division_id"`
	ClassSessionTeacherID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_class_session_teacher_time,priority:1;column:class_session_teacher_id" json:"class_session_teacher_id"`
	ClassSessionRoomID     *uuid.UUID `gorm:"type:uuid;index:idx_class_session_room_time,priority:1;column:class_session_room_id" json:"class_session_room_id,omitempty"`

	ClassSessionStartAt time.Time `gorm:"not null;index:idx_class_session_teacher_time,priority:2;index:idx_class_session_room_time,priority:2;column:class_session_start_at" json:"class_session_start_at"`
	ClassSessionEndAt   time.Time `gorm:"not null;column:class_session_end_at" json:"class_session_end_at"`

	// Join key ke cpr_sub_topics.lecture_number
	ClassSessionLectureNumber string `gorm:"type:varchar(20);not null;index;column:class_session_lecture_number" json:"class_session_lecture_number"`

	ClassSessionCreatedAt time.Time      `gorm:"column:class_session_created_at;autoCreateTime" json:"class_session_created_at"`
	ClassSessionUpdatedAt time.Time      `gorm:"column:class_session_updated_at;autoUpdateTime" json:"class_session_updated_at"`
	ClassSessionDeletedAt gorm.DeletedAt `gorm:"column:class_session_deleted_at;index" json:"-"`
}

func (ClassSessionModel) TableName() string { return "class_sessions" }

func (cs *ClassSessionModel) BeforeCreate(tx *gorm.DB) error {
	if cs.ClassSessionID == uuid.Nil {
		cs.ClassSessionID = uuid.New()
	}
	cs.ClassSessionStartAt = cs.ClassSessionStartAt.UTC()
	cs.ClassSessionEndAt = cs.ClassSessionEndAt.UTC()
	return nil
}

func (cs *ClassSessionModel) BeforeSave(tx *gorm.DB) error {
	cs.ClassSessionStartAt = cs.ClassSessionStartAt.UTC()
	cs.ClassSessionEndAt = cs.ClassSessionEndAt.UTC()
	return nil
}
