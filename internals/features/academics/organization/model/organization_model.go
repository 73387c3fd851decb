// file: internals/features/academics/organization/model/organization_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Hierarchy (read-only di service ini)
   Center → School → Batch → Division → Semester → Subject
========================= */

type CenterModel struct {
	CenterID   uuid.UUID `gorm:"type:uuid;primaryKey;column:center_id" json:"center_id"`
	CenterName string    `gorm:"type:varchar(120);not null;column:center_name" json:"center_name"`
	CenterCode string    `gorm:"type:varchar(20);column:center_code" json:"center_code"`
}

func (CenterModel) TableName() string { return "centers" }

type SchoolModel struct {
	SchoolID       uuid.UUID `gorm:"type:uuid;primaryKey;column:school_id" json:"school_id"`
	SchoolCenterID uuid.UUID `gorm:"type:uuid;not null;index;column:school_center_id" json:"school_center_id"`
	SchoolName     string    `gorm:"type:varchar(120);not null;column:school_name" json:"school_name"`
}

func (SchoolModel) TableName() string { return "schools" }

type BatchModel struct {
	BatchID       uuid.UUID `gorm:"type:uuid;primaryKey;column:batch_id" json:"batch_id"`
	BatchSchoolID uuid.UUID `gorm:"type:uuid;not null;index;column:batch_school_id" json:"batch_school_id"`
	BatchName     string    `gorm:"type:varchar(60);not null;column:batch_name" json:"batch_name"`
}

func (BatchModel) TableName() string { return "batches" }

type DivisionModel struct {
	DivisionID      uuid.UUID `gorm:"type:uuid;primaryKey;column:division_id" json:"division_id"`
	DivisionBatchID uuid.UUID `gorm:"type:uuid;not null;index;column:division_batch_id" json:"division_batch_id"`
	DivisionCode    string    `gorm:"type:varchar(30);not null;column:division_code" json:"division_code"`
}

func (DivisionModel) TableName() string { return "divisions" }

// SemesterEndDate nil = open-ended
type SemesterModel struct {
	SemesterID         uuid.UUID  `gorm:"type:uuid;primaryKey;column:semester_id" json:"semester_id"`
	SemesterDivisionID uuid.UUID  `gorm:"type:uuid;not null;index;column:semester_division_id" json:"semester_division_id"`
	SemesterNumber     int        `gorm:"not null;column:semester_number" json:"semester_number"`
	SemesterStartDate  time.Time  `gorm:"type:date;not null;column:semester_start_date" json:"semester_start_date"`
	SemesterEndDate    *time.Time `gorm:"type:date;column:semester_end_date" json:"semester_end_date,omitempty"`
}

func (SemesterModel) TableName() string { return "semesters" }

type TeacherModel struct {
	TeacherID    uuid.UUID `gorm:"type:uuid;primaryKey;column:teacher_id" json:"teacher_id"`
	TeacherName  string    `gorm:"type:varchar(120);not null;column:teacher_name" json:"teacher_name"`
	TeacherEmail string    `gorm:"type:varchar(160);column:teacher_email" json:"teacher_email"`
}

func (TeacherModel) TableName() string { return "teachers" }

type RoomModel struct {
	RoomID       uuid.UUID `gorm:"type:uuid;primaryKey;column:room_id" json:"room_id"`
	RoomCenterID uuid.UUID `gorm:"type:uuid;not null;index;column:room_center_id" json:"room_center_id"`
	RoomName     string    `gorm:"type:varchar(80);not null;column:room_name" json:"room_name"`
}

func (RoomModel) TableName() string { return "rooms" }

type SubjectModel struct {
	SubjectID         uuid.UUID `gorm:"type:uuid;primaryKey;column:subject_id" json:"subject_id"`
	SubjectSemesterID uuid.UUID `gorm:"type:uuid;not null;index;column:subject_semester_id" json:"subject_semester_id"`
	SubjectTeacherID  uuid.UUID `gorm:"type:uuid;not null;index;column:subject_teacher_id" json:"subject_teacher_id"`
	SubjectName       string    `gorm:"type:varchar(160);not null;column:subject_name" json:"subject_name"`
	SubjectCode       string    `gorm:"type:varchar(40);column:subject_code" json:"subject_code"`
}

func (SubjectModel) TableName() string { return "subjects" }

/* =========================
   UUID default (tanpa gen_random_uuid supaya portable)
========================= */

func (m *CenterModel) BeforeCreate(tx *gorm.DB) error   { m.CenterID = ensureID(m.CenterID); return nil }
func (m *SchoolModel) BeforeCreate(tx *gorm.DB) error   { m.SchoolID = ensureID(m.SchoolID); return nil }
func (m *BatchModel) BeforeCreate(tx *gorm.DB) error    { m.BatchID = ensureID(m.BatchID); return nil }
func (m *DivisionModel) BeforeCreate(tx *gorm.DB) error { m.DivisionID = ensureID(m.DivisionID); return nil }
func (m *SemesterModel) BeforeCreate(tx *gorm.DB) error { m.SemesterID = ensureID(m.SemesterID); return nil }
func (m *TeacherModel) BeforeCreate(tx *gorm.DB) error  { m.TeacherID = ensureID(m.TeacherID); return nil }
func (m *RoomModel) BeforeCreate(tx *gorm.DB) error     { m.RoomID = ensureID(m.RoomID); return nil }
func (m *SubjectModel) BeforeCreate(tx *gorm.DB) error  { m.SubjectID = ensureID(m.SubjectID); return nil }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
