// file: internals/features/academics/organization/service/hierarchy.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	m "pwioi_backend/internals/features/academics/organization/model"
)

/*
   Hierarchy = lookup read-only subject → semester → division → batch → school → center.
   CRUD entitas organisasi ada di luar service ini.
*/

type UnitLevel string

const (
	LevelCenter   UnitLevel = "center"
	LevelSchool   UnitLevel = "school"
	LevelDivision UnitLevel = "division"
)

func ParseUnitLevel(s string) (UnitLevel, error) {
	switch UnitLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelCenter:
		return LevelCenter, nil
	case LevelSchool, "":
		return LevelSchool, nil
	case LevelDivision:
		return LevelDivision, nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "level must be one of: center, school, division")
}

// SubjectContext: subject + posisi lengkapnya di hierarki.
type SubjectContext struct {
	SubjectID         uuid.UUID  `gorm:"column:subject_id"`
	SubjectName       string     `gorm:"column:subject_name"`
	SubjectCode       string     `gorm:"column:subject_code"`
	TeacherID         uuid.UUID  `gorm:"column:teacher_id"`
	SemesterID        uuid.UUID  `gorm:"column:semester_id"`
	SemesterStartDate time.Time  `gorm:"column:semester_start_date"`
	SemesterEndDate   *time.Time `gorm:"column:semester_end_date"`
	DivisionID        uuid.UUID  `gorm:"column:division_id"`
	BatchID           uuid.UUID  `gorm:"column:batch_id"`
	SchoolID          uuid.UUID  `gorm:"column:school_id"`
	CenterID          uuid.UUID  `gorm:"column:center_id"`
}

// UnitID: id unit sesuai level agregasi.
func (s SubjectContext) UnitID(level UnitLevel) uuid.UUID {
	switch level {
	case LevelCenter:
		return s.CenterID
	case LevelDivision:
		return s.DivisionID
	default:
		return s.SchoolID
	}
}

// IsOngoing: semester.start <= today <= semester.end (end nil = open-ended), date-only.
func (s SubjectContext) IsOngoing(today time.Time) bool {
	t := dateOnly(today)
	if dateOnly(s.SemesterStartDate).After(t) {
		return false
	}
	if s.SemesterEndDate != nil && dateOnly(*s.SemesterEndDate).Before(t) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

type Unit struct {
	ID   uuid.UUID `gorm:"column:unit_id" json:"unit_id"`
	Name string    `gorm:"column:unit_name" json:"unit_name"`
}

type Hierarchy struct{ DB *gorm.DB }

func NewHierarchy(db *gorm.DB) *Hierarchy { return &Hierarchy{DB: db} }

const subjectContextSelect = `
SELECT
  s.subject_id           AS subject_id,
  s.subject_name         AS subject_name,
  s.subject_code         AS subject_code,
  s.subject_teacher_id   AS teacher_id,
  sem.semester_id        AS semester_id,
  sem.semester_start_date AS semester_start_date,
  sem.semester_end_date  AS semester_end_date,
  d.division_id          AS division_id,
  b.batch_id             AS batch_id,
  sc.school_id           AS school_id,
  sc.school_center_id    AS center_id
FROM subjects s
JOIN semesters sem ON sem.semester_id = s.subject_semester_id
JOIN divisions d   ON d.division_id   = sem.semester_division_id
JOIN batches b     ON b.batch_id      = d.division_batch_id
JOIN schools sc    ON sc.school_id    = b.batch_school_id
`

// Subject: not found → 404.
func (h *Hierarchy) Subject(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) (*SubjectContext, error) {
	db := h.conn(ctx, tx)
	var rows []SubjectContext
	if err := db.Raw(subjectContextSelect+"WHERE s.subject_id = ? LIMIT 1", subjectID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].SubjectID == uuid.Nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "subject not found")
	}
	return &rows[0], nil
}

// Units: daftar unit pada level tertentu, opsional difilter parent
// (school ← center, division ← school). Urut nama supaya output stabil.
func (h *Hierarchy) Units(ctx context.Context, level UnitLevel, parentID *uuid.UUID) ([]Unit, error) {
	db := h.DB.WithContext(ctx)
	var (
		q    string
		args []any
	)
	switch level {
	case LevelCenter:
		q = `SELECT center_id AS unit_id, center_name AS unit_name FROM centers`
		if parentID != nil {
			q += ` WHERE center_id = ?`
			args = append(args, *parentID)
		}
		q += ` ORDER BY center_name`
	case LevelSchool:
		q = `SELECT school_id AS unit_id, school_name AS unit_name FROM schools`
		if parentID != nil {
			q += ` WHERE school_center_id = ?`
			args = append(args, *parentID)
		}
		q += ` ORDER BY school_name`
	case LevelDivision:
		q = `SELECT d.division_id AS unit_id, d.division_code AS unit_name
FROM divisions d JOIN batches b ON b.batch_id = d.division_batch_id`
		if parentID != nil {
			q += ` WHERE b.batch_school_id = ?`
			args = append(args, *parentID)
		}
		q += ` ORDER BY d.division_code`
	default:
		return nil, fmt.Errorf("unknown unit level %q", level)
	}

	var units []Unit
	if err := db.Raw(q, args...).Scan(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// SubjectsInScope: semua subject di bawah parent (atau semua kalau parent nil).
// Filter "ongoing" dilakukan pemanggil karena butuh `today`.
func (h *Hierarchy) SubjectsInScope(ctx context.Context, level UnitLevel, parentID *uuid.UUID) ([]SubjectContext, error) {
	db := h.DB.WithContext(ctx)
	q := subjectContextSelect
	var args []any
	if parentID != nil {
		switch level {
		case LevelCenter:
			q += "WHERE sc.school_center_id = ?"
		case LevelSchool:
			q += "WHERE sc.school_center_id = ?"
		case LevelDivision:
			q += "WHERE sc.school_id = ?"
		}
		args = append(args, *parentID)
	}
	q += " ORDER BY s.subject_name"

	var rows []SubjectContext
	if err := db.Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (h *Hierarchy) TeacherExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return exists(h.conn(ctx, tx), &m.TeacherModel{}, "teacher_id = ?", id, "teacher not found")
}

func (h *Hierarchy) RoomExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return exists(h.conn(ctx, tx), &m.RoomModel{}, "room_id = ?", id, "room not found")
}

func (h *Hierarchy) DivisionExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return exists(h.conn(ctx, tx), &m.DivisionModel{}, "division_id = ?", id, "division not found")
}

func exists(db *gorm.DB, model any, where string, id uuid.UUID, notFound string) error {
	var n int64
	if err := db.Model(model).Where(where, id).Count(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, notFound)
		}
		return err
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return nil
}

// conn: pakai tx kalau sedang di dalam transaksi pemicu.
func (h *Hierarchy) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return h.DB.WithContext(ctx)
}
