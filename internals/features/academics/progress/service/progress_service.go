// file: internals/features/academics/progress/service/progress_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	cprService "pwioi_backend/internals/features/academics/curriculum/service"
	orgService "pwioi_backend/internals/features/academics/organization/service"
	"pwioi_backend/internals/helpers/dbtime"
)

/*
   Service = read-only: snapshot per subject & rollup per unit.
   Tidak menahan lock; `today` berasal dari Now (clock yang bisa di-inject).
*/

type Service struct {
	Hierarchy *orgService.Hierarchy
	Store     *cprService.Store
	Loc       *time.Location
	Now       func() time.Time
}

func NewService(db *gorm.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Hierarchy: orgService.NewHierarchy(db),
		Store:     cprService.NewStore(db, loc),
		Loc:       loc,
		Now:       time.Now,
	}
}

type Rollup struct {
	Level           orgService.UnitLevel `json:"level"`
	ParentID        *uuid.UUID           `json:"parent_id,omitempty"`
	Today           string               `json:"today"`
	Units           []UnitSummary        `json:"units"`
	OngoingSubjects int                  `json:"ongoing_subjects"`
}

func (s *Service) Today() datatypes.Date {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return dbtime.Today(now(), s.Loc)
}

// SubjectProgress: snapshot satu subject (404 kalau subject tidak ada).
func (s *Service) SubjectProgress(ctx context.Context, subjectID uuid.UUID) (*SubjectProgress, error) {
	subj, err := s.Hierarchy.Subject(ctx, nil, subjectID)
	if err != nil {
		return nil, err
	}
	byID, err := s.Store.SubTopicsBySubject(ctx, []uuid.UUID{subjectID})
	if err != nil {
		return nil, err
	}
	sp := build(*subj, orgService.LevelSchool, StatesFromModels(byID[subjectID]), s.Today())
	return &sp, nil
}

// Rollup: subject ongoing di scope (level, parent) → summary per unit.
func (s *Service) Rollup(ctx context.Context, level orgService.UnitLevel, parentID *uuid.UUID) (*Rollup, error) {
	today := s.Today()

	units, err := s.Hierarchy.Units(ctx, level, parentID)
	if err != nil {
		return nil, err
	}
	all, err := s.Hierarchy.SubjectsInScope(ctx, level, parentID)
	if err != nil {
		return nil, err
	}

	ongoing := make([]orgService.SubjectContext, 0, len(all))
	ids := make([]uuid.UUID, 0, len(all))
	for _, sc := range all {
		if sc.IsOngoing(time.Time(today)) {
			ongoing = append(ongoing, sc)
			ids = append(ids, sc.SubjectID)
		}
	}

	byID, err := s.Store.SubTopicsBySubject(ctx, ids)
	if err != nil {
		return nil, err
	}

	progress := make([]SubjectProgress, 0, len(ongoing))
	for _, sc := range ongoing {
		progress = append(progress, build(sc, level, StatesFromModels(byID[sc.SubjectID]), today))
	}

	return &Rollup{
		Level:           level,
		ParentID:        parentID,
		Today:           time.Time(today).Format(dbtime.DateLayout),
		Units:           Aggregate(units, progress),
		OngoingSubjects: len(ongoing),
	}, nil
}

func build(sc orgService.SubjectContext, level orgService.UnitLevel, states []SubTopicState, today datatypes.Date) SubjectProgress {
	snap := Calculate(states, today)
	sp := SubjectProgress{
		SubjectID:   sc.SubjectID,
		SubjectName: sc.SubjectName,
		SubjectCode: sc.SubjectCode,
		TeacherID:   sc.TeacherID,
		UnitID:      sc.UnitID(level),
		Snapshot:    snap,
	}
	if snap.HasCurriculumData {
		sp.Bucket = Classify(snap)
	}
	return sp
}
