// file: internals/features/academics/curriculum/service/curriculum_store.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	m "pwioi_backend/internals/features/academics/curriculum/model"
	orgService "pwioi_backend/internals/features/academics/organization/service"
	planning "pwioi_backend/internals/features/academics/planning/service"
	"pwioi_backend/internals/helpers/dbtime"
)

const insertBatchSize = 500

/*
   Store = pemilik tree Module → Topic → SubTopic per subject.
   Import selalu REPLACE (hapus lalu buat ulang) + recompute di transaksi yang sama.
*/

type Store struct {
	DB         *gorm.DB
	Hierarchy  *orgService.Hierarchy
	Recomputer *planning.Recomputer
	Loc        *time.Location
	Now        func() time.Time
}

func NewStore(db *gorm.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		DB:         db,
		Hierarchy:  orgService.NewHierarchy(db),
		Recomputer: planning.NewRecomputer(loc),
		Loc:        loc,
		Now:        time.Now,
	}
}

type ReplaceResult struct {
	Modules   int                      `json:"modules"`
	Topics    int                      `json:"topics"`
	SubTopics int                      `json:"sub_topics"`
	Skipped   []SkippedRow             `json:"skipped_rows,omitempty"`
	Recompute planning.RecomputeResult `json:"recompute"`
}

// Tree: hasil baca berurutan (module.order, topic.order, sub_topic.order).
type Tree struct {
	Modules   []m.ModuleModel
	Topics    []m.TopicModel
	SubTopics []m.SubTopicModel
}

/* =========================
   Replace
========================= */

func (s *Store) Replace(ctx context.Context, subjectID uuid.UUID, rows []ImportRow) (*ReplaceResult, error) {
	drafts, skipped := BuildTree(rows)
	if len(drafts) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "no valid curriculum rows (module, topic, sub-topic and lecture number are required)")
	}

	res := &ReplaceResult{Modules: len(drafts), Skipped: skipped}
	res.Topics, res.SubTopics = countTree(drafts)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Hierarchy.Subject(ctx, tx, subjectID); err != nil {
			return err
		}
		if err := deleteTree(tx, subjectID); err != nil {
			return err
		}
		if err := insertTree(tx, subjectID, drafts); err != nil {
			return err
		}
		rr, err := s.Recomputer.Recompute(tx, subjectID)
		if err != nil {
			return err
		}
		res.Recompute = rr
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Curriculum.Replace] subject=%s modules=%d topics=%d sub_topics=%d skipped=%d planned=%d",
		subjectID, res.Modules, res.Topics, res.SubTopics, len(skipped), res.Recompute.Assigned)
	return res, nil
}

// deleteTree: urut anak → induk (tanpa bergantung FK cascade).
func deleteTree(tx *gorm.DB, subjectID uuid.UUID) error {
	moduleIDs := tx.Model(&m.ModuleModel{}).
		Select("cpr_module_id").
		Where("cpr_module_subject_id = ?", subjectID)
	topicIDs := tx.Model(&m.TopicModel{}).
		Select("cpr_topic_id").
		Where("cpr_topic_module_id IN (?)", moduleIDs)

	if err := tx.Where("cpr_sub_topic_topic_id IN (?)", topicIDs).
		Delete(&m.SubTopicModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("cpr_topic_module_id IN (?)", moduleIDs).
		Delete(&m.TopicModel{}).Error; err != nil {
		return err
	}
	return tx.Where("cpr_module_subject_id = ?", subjectID).
		Delete(&m.ModuleModel{}).Error
}

func insertTree(tx *gorm.DB, subjectID uuid.UUID, drafts []ModuleDraft) error {
	var (
		modules   []m.ModuleModel
		topics    []m.TopicModel
		subTopics []m.SubTopicModel
	)
	for _, md := range drafts {
		modID := uuid.New()
		modules = append(modules, m.ModuleModel{
			CPRModuleID:        modID,
			CPRModuleSubjectID: subjectID,
			CPRModuleOrder:     md.Order,
			CPRModuleName:      md.Name,
		})
		for _, td := range md.Topics {
			topID := uuid.New()
			topics = append(topics, m.TopicModel{
				CPRTopicID:       topID,
				CPRTopicModuleID: modID,
				CPRTopicOrder:    td.Order,
				CPRTopicName:     td.Name,
			})
			for _, sd := range td.SubTopics {
				subTopics = append(subTopics, m.SubTopicModel{
					CPRSubTopicTopicID:       topID,
					CPRSubTopicOrder:         sd.Order,
					CPRSubTopicName:          sd.Name,
					CPRSubTopicLectureNumber: sd.LectureNumber,
					CPRSubTopicStatus:        m.SubTopicPending,
				})
			}
		}
	}

	if err := tx.CreateInBatches(&modules, insertBatchSize).Error; err != nil {
		return err
	}
	if err := tx.CreateInBatches(&topics, insertBatchSize).Error; err != nil {
		return err
	}
	return tx.CreateInBatches(&subTopics, insertBatchSize).Error
}

/* =========================
   Read
========================= */

func (s *Store) Tree(ctx context.Context, subjectID uuid.UUID) (*Tree, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.Hierarchy.Subject(ctx, nil, subjectID); err != nil {
		return nil, err
	}

	t := &Tree{}
	if err := db.Where("cpr_module_subject_id = ?", subjectID).
		Order("cpr_module_order ASC").
		Find(&t.Modules).Error; err != nil {
		return nil, err
	}
	if len(t.Modules) == 0 {
		return t, nil
	}

	modIDs := make([]uuid.UUID, 0, len(t.Modules))
	for _, md := range t.Modules {
		modIDs = append(modIDs, md.CPRModuleID)
	}
	if err := db.Where("cpr_topic_module_id IN ?", modIDs).
		Order("cpr_topic_order ASC").
		Find(&t.Topics).Error; err != nil {
		return nil, err
	}

	topIDs := make([]uuid.UUID, 0, len(t.Topics))
	for _, tp := range t.Topics {
		topIDs = append(topIDs, tp.CPRTopicID)
	}
	if len(topIDs) > 0 {
		if err := db.Where("cpr_sub_topic_topic_id IN ?", topIDs).
			Order("cpr_sub_topic_order ASC").
			Find(&t.SubTopics).Error; err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SubTopicsBySubject: semua sub-topic untuk banyak subject sekaligus (untuk progress/rollup).
func (s *Store) SubTopicsBySubject(ctx context.Context, subjectIDs []uuid.UUID) (map[uuid.UUID][]m.SubTopicModel, error) {
	out := make(map[uuid.UUID][]m.SubTopicModel, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return out, nil
	}

	type row struct {
		m.SubTopicModel
		SubjectID uuid.UUID `gorm:"column:subject_id"`
	}
	var rows []row
	if err := s.DB.WithContext(ctx).
		Table("cpr_sub_topics st").
		Select("st.*, md.cpr_module_subject_id AS subject_id").
		Joins("JOIN cpr_topics tp ON tp.cpr_topic_id = st.cpr_sub_topic_topic_id").
		Joins("JOIN cpr_modules md ON md.cpr_module_id = tp.cpr_topic_module_id").
		Where("md.cpr_module_subject_id IN ?", subjectIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.SubjectID] = append(out[r.SubjectID], r.SubTopicModel)
	}
	return out, nil
}

/* =========================
   Status (progress mengajar)
========================= */

// UpdateSubTopicStatus:
//   - PENDING     → actual start/end dikosongkan
//   - IN_PROGRESS → actual start = date (kalau belum ada / date eksplisit), actual end dikosongkan
//   - COMPLETED   → actual end = date; actual start ikut diisi kalau masih kosong
//
// loc = zona untuk mengambil tanggal (X-School-Timezone); nil = s.Loc.
func (s *Store) UpdateSubTopicStatus(ctx context.Context, id uuid.UUID, status m.SubTopicStatus, date *time.Time, loc *time.Location) (*m.SubTopicModel, error) {
	if !status.Valid() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "status must be one of: PENDING, IN_PROGRESS, COMPLETED")
	}

	var row m.SubTopicModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cpr_sub_topic_id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "sub-topic not found")
			}
			return err
		}

		at := s.now()
		if date != nil {
			at = *date
		}
		if loc == nil {
			loc = s.Loc
		}
		day := dbtime.DatePtr(at, loc)

		switch status {
		case m.SubTopicPending:
			row.CPRSubTopicActualStart = nil
			row.CPRSubTopicActualEnd = nil
		case m.SubTopicInProgress:
			if row.CPRSubTopicActualStart == nil || date != nil {
				row.CPRSubTopicActualStart = day
			}
			row.CPRSubTopicActualEnd = nil
		case m.SubTopicCompleted:
			if row.CPRSubTopicActualStart == nil {
				row.CPRSubTopicActualStart = day
			}
			row.CPRSubTopicActualEnd = day
		}
		row.CPRSubTopicStatus = status

		return tx.Model(&m.SubTopicModel{}).
			Where("cpr_sub_topic_id = ?", id).
			Updates(map[string]any{
				"cpr_sub_topic_status":       row.CPRSubTopicStatus,
				"cpr_sub_topic_actual_start": row.CPRSubTopicActualStart,
				"cpr_sub_topic_actual_end":   row.CPRSubTopicActualEnd,
				"cpr_sub_topic_updated_at":   time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
