package organization

import (
	"os"
	"path/filepath"
	"testing"

	m "pwioi_backend/internals/features/academics/organization/model"
	"pwioi_backend/internals/testutil"
)

const sample = `{
  "teachers": [{"name": "Dr. Rao", "email": "rao@example.com"}, {"name": "Ms. Iyer"}],
  "centers": [{
    "name": "Pune", "code": "PUN", "rooms": ["101", "102"],
    "schools": [{
      "name": "School of Technology",
      "batches": [{
        "name": "2025",
        "divisions": [{
          "code": "SOT-A",
          "semesters": [
            {"number": 1, "start": "2025-01-06", "end": null,
             "subjects": [{"name": "Physics", "code": "PHY", "teacher": "Dr. Rao"},
                          {"name": "Maths", "code": "MTH", "teacher": "Ms. Iyer"}]},
            {"number": 0, "start": "2024-07-01", "end": "2024-12-20", "subjects": []}
          ]
        }]
      }]
    }]
  }]
}`

func TestSeedFromJSONIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	path := filepath.Join(t.TempDir(), "org.json")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}

	first, err := SeedFromJSON(db, path)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	// 2 teacher + center + 2 room + school + batch + division + 2 semester + 2 subject
	if first.Created != 12 || first.Skipped != 0 {
		t.Fatalf("first = %+v", first)
	}

	second, err := SeedFromJSON(db, path)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if second.Created != 0 || second.Skipped != 12 {
		t.Fatalf("second = %+v", second)
	}

	var subjects []m.SubjectModel
	if err := db.Order("subject_name").Find(&subjects).Error; err != nil {
		t.Fatal(err)
	}
	if len(subjects) != 2 || subjects[0].SubjectName != "Maths" || subjects[0].SubjectTeacherID == subjects[1].SubjectTeacherID {
		t.Fatalf("subjects = %+v", subjects)
	}
}

func TestSeedRollsBackOnUnknownTeacher(t *testing.T) {
	db := testutil.NewDB(t)
	end := "2025-06-30"
	_, err := Seed(db, File{
		Centers: []CenterSeed{{
			Name: "Pune",
			Schools: []SchoolSeed{{Name: "SOT", Batches: []BatchSeed{{Name: "2025", Divisions: []DivisionSeed{{
				Code: "A",
				Semesters: []SemesterSeed{{Number: 1, Start: "2025-01-06", End: &end,
					Subjects: []SubjectSeed{{Name: "Physics", Teacher: "Nobody"}}}},
			}}}}}},
		}},
	})
	if err == nil {
		t.Fatal("expected error for unknown teacher")
	}
	var n int64
	db.Model(&m.CenterModel{}).Count(&n)
	if n != 0 {
		t.Fatalf("centers = %d, want 0 after rollback", n)
	}
}
