package organization

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	m "pwioi_backend/internals/features/academics/organization/model"
)

/*
   Seed hierarki organisasi dari JSON (center → school → batch → division → semester → subject).
   Idempotent: entitas dicari lewat natural key, yang sudah ada dilewati.
*/

const dateLayout = "2006-01-02"

type TeacherSeed struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SubjectSeed struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Teacher string `json:"teacher"` // nama TeacherSeed
}

type SemesterSeed struct {
	Number   int           `json:"number"`
	Start    string        `json:"start"` // YYYY-MM-DD
	End      *string       `json:"end"`   // null = open-ended
	Subjects []SubjectSeed `json:"subjects"`
}

type DivisionSeed struct {
	Code      string         `json:"code"`
	Semesters []SemesterSeed `json:"semesters"`
}

type BatchSeed struct {
	Name      string         `json:"name"`
	Divisions []DivisionSeed `json:"divisions"`
}

type SchoolSeed struct {
	Name    string      `json:"name"`
	Batches []BatchSeed `json:"batches"`
}

type CenterSeed struct {
	Name    string       `json:"name"`
	Code    string       `json:"code"`
	Rooms   []string     `json:"rooms"`
	Schools []SchoolSeed `json:"schools"`
}

type File struct {
	Teachers []TeacherSeed `json:"teachers"`
	Centers  []CenterSeed  `json:"centers"`
}

type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func SeedFromJSON(db *gorm.DB, filePath string) (*Result, error) {
	log.Println("📥 Membaca file:", filePath)
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("gagal membaca file seed: %w", err)
	}
	var f File
	if err := sonic.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("gagal decode JSON: %w", err)
	}
	return Seed(db, f)
}

// Seed: satu transaksi; gagal di tengah = tidak ada yang tersimpan.
func Seed(db *gorm.DB, f File) (*Result, error) {
	res := &Result{}
	err := db.Transaction(func(tx *gorm.DB) error {
		s := seeder{tx: tx, res: res, teachers: map[string]m.TeacherModel{}}
		for _, t := range f.Teachers {
			if err := s.teacher(t); err != nil {
				return err
			}
		}
		for _, c := range f.Centers {
			if err := s.center(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Seed organisasi selesai: %d dibuat, %d dilewati", res.Created, res.Skipped)
	return res, nil
}

type seeder struct {
	tx       *gorm.DB
	res      *Result
	teachers map[string]m.TeacherModel
}

// firstOrCreate: cari dengan where, buat kalau belum ada.
func (s *seeder) firstOrCreate(dst any, where string, args ...any) error {
	err := s.tx.Where(where, args...).First(dst).Error
	switch {
	case err == nil:
		s.res.Skipped++
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.tx.Create(dst).Error; err != nil {
			return err
		}
		s.res.Created++
		return nil
	default:
		return err
	}
}

func (s *seeder) teacher(t TeacherSeed) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return errors.New("teacher name kosong")
	}
	row := m.TeacherModel{TeacherName: name, TeacherEmail: strings.TrimSpace(t.Email)}
	if err := s.firstOrCreate(&row, "teacher_name = ?", name); err != nil {
		return err
	}
	s.teachers[name] = row
	return nil
}

func (s *seeder) center(c CenterSeed) error {
	center := m.CenterModel{CenterName: strings.TrimSpace(c.Name), CenterCode: strings.TrimSpace(c.Code)}
	if err := s.firstOrCreate(&center, "center_name = ?", center.CenterName); err != nil {
		return err
	}
	for _, name := range c.Rooms {
		room := m.RoomModel{RoomCenterID: center.CenterID, RoomName: strings.TrimSpace(name)}
		if err := s.firstOrCreate(&room, "room_center_id = ? AND room_name = ?", center.CenterID, room.RoomName); err != nil {
			return err
		}
	}
	for _, sc := range c.Schools {
		school := m.SchoolModel{SchoolCenterID: center.CenterID, SchoolName: strings.TrimSpace(sc.Name)}
		if err := s.firstOrCreate(&school, "school_center_id = ? AND school_name = ?", center.CenterID, school.SchoolName); err != nil {
			return err
		}
		for _, b := range sc.Batches {
			if err := s.batch(school.SchoolID, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) batch(schoolID uuid.UUID, b BatchSeed) error {
	batch := m.BatchModel{BatchSchoolID: schoolID, BatchName: strings.TrimSpace(b.Name)}
	if err := s.firstOrCreate(&batch, "batch_school_id = ? AND batch_name = ?", schoolID, batch.BatchName); err != nil {
		return err
	}
	for _, d := range b.Divisions {
		div := m.DivisionModel{DivisionBatchID: batch.BatchID, DivisionCode: strings.TrimSpace(d.Code)}
		if err := s.firstOrCreate(&div, "division_batch_id = ? AND division_code = ?", batch.BatchID, div.DivisionCode); err != nil {
			return err
		}
		for _, sem := range d.Semesters {
			if err := s.semester(div.DivisionID, sem); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) semester(divisionID uuid.UUID, sem SemesterSeed) error {
	start, err := time.Parse(dateLayout, strings.TrimSpace(sem.Start))
	if err != nil {
		return fmt.Errorf("semester %d: start %q bukan YYYY-MM-DD", sem.Number, sem.Start)
	}
	row := m.SemesterModel{SemesterDivisionID: divisionID, SemesterNumber: sem.Number, SemesterStartDate: start}
	if sem.End != nil {
		end, err := time.Parse(dateLayout, strings.TrimSpace(*sem.End))
		if err != nil {
			return fmt.Errorf("semester %d: end %q bukan YYYY-MM-DD", sem.Number, *sem.End)
		}
		row.SemesterEndDate = &end
	}
	if err := s.firstOrCreate(&row, "semester_division_id = ? AND semester_number = ?", divisionID, sem.Number); err != nil {
		return err
	}

	for _, sub := range sem.Subjects {
		t, ok := s.teachers[strings.TrimSpace(sub.Teacher)]
		if !ok {
			return fmt.Errorf("subject %q: teacher %q tidak ada di daftar teachers", sub.Name, sub.Teacher)
		}
		subj := m.SubjectModel{
			SubjectSemesterID: row.SemesterID,
			SubjectTeacherID:  t.TeacherID,
			SubjectName:       strings.TrimSpace(sub.Name),
			SubjectCode:       strings.TrimSpace(sub.Code),
		}
		if err := s.firstOrCreate(&subj, "subject_semester_id = ? AND subject_name = ?", row.SemesterID, subj.SubjectName); err != nil {
			return err
		}
	}
	return nil
}
