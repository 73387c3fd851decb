// Package testutil: database SQLite in-memory + fixture hierarki untuk test.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "pwioi_backend/internals/databases"
	orgModel "pwioi_backend/internals/features/academics/organization/model"
)

// NewDB: satu database per test, skema dari database.Models().
// Satu koneksi saja supaya semua query melihat database memory yang sama.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type Org struct {
	Center   orgModel.CenterModel
	School   orgModel.SchoolModel
	Batch    orgModel.BatchModel
	Division orgModel.DivisionModel
	Semester orgModel.SemesterModel
	Teacher  orgModel.TeacherModel
	Room     orgModel.RoomModel
}

// SeedOrg: center → school → batch → division → semester (mulai 2025-01-01, tanpa akhir).
func SeedOrg(t testing.TB, db *gorm.DB, name string) *Org {
	t.Helper()
	o := &Org{
		Center: orgModel.CenterModel{CenterName: name + " Center", CenterCode: name},
	}
	mustCreate(t, db, &o.Center)

	o.School = orgModel.SchoolModel{SchoolCenterID: o.Center.CenterID, SchoolName: name + " School"}
	mustCreate(t, db, &o.School)

	o.Batch = orgModel.BatchModel{BatchSchoolID: o.School.SchoolID, BatchName: "2025"}
	mustCreate(t, db, &o.Batch)

	o.Division = orgModel.DivisionModel{DivisionBatchID: o.Batch.BatchID, DivisionCode: name + "-A"}
	mustCreate(t, db, &o.Division)

	o.Semester = orgModel.SemesterModel{
		SemesterDivisionID: o.Division.DivisionID,
		SemesterNumber:     1,
		SemesterStartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	mustCreate(t, db, &o.Semester)

	o.Teacher = AddTeacher(t, db, name+" Teacher")
	o.Room = AddRoom(t, db, o.Center.CenterID, name+" Room 101")
	return o
}

func AddTeacher(t testing.TB, db *gorm.DB, name string) orgModel.TeacherModel {
	t.Helper()
	m := orgModel.TeacherModel{TeacherName: name}
	mustCreate(t, db, &m)
	return m
}

func AddRoom(t testing.TB, db *gorm.DB, centerID uuid.UUID, name string) orgModel.RoomModel {
	t.Helper()
	m := orgModel.RoomModel{RoomCenterID: centerID, RoomName: name}
	mustCreate(t, db, &m)
	return m
}

func AddSubject(t testing.TB, db *gorm.DB, o *Org, name string, teacherID uuid.UUID) orgModel.SubjectModel {
	t.Helper()
	m := orgModel.SubjectModel{
		SubjectSemesterID: o.Semester.SemesterID,
		SubjectTeacherID:  teacherID,
		SubjectName:       name,
		SubjectCode:       name,
	}
	mustCreate(t, db, &m)
	return m
}

func mustCreate(t testing.TB, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
