// file: internals/features/academics/curriculum/model/curriculum_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================
   Enum
========================= */

type SubTopicStatus string

const (
	SubTopicPending    SubTopicStatus = "PENDING"
	SubTopicInProgress SubTopicStatus = "IN_PROGRESS"
	SubTopicCompleted  SubTopicStatus = "COMPLETED"
)

func (s SubTopicStatus) Valid() bool {
	switch s {
	case SubTopicPending, SubTopicInProgress, SubTopicCompleted:
		return true
	}
	return false
}

/* =========================
   CPR tree: Module → Topic → SubTopic
========================= */

type ModuleModel struct {
	CPRModuleID        uuid.UUID `gorm:"type:uuid;primaryKey;column:cpr_module_id" json:"cpr_module_id"`
	CPRModuleSubjectID uuid.UUID `gorm:"type:uuid;not null;index;column:cpr_module_subject_id" json:"cpr_module_subject_id"`
	CPRModuleOrder     int       `gorm:"not null;column:cpr_module_order" json:"cpr_module_order"`
	CPRModuleName      string    `gorm:"type:varchar(200);not null;column:cpr_module_name" json:"cpr_module_name"`

	CPRModuleCreatedAt time.Time `gorm:"column:cpr_module_created_at;autoCreateTime" json:"cpr_module_created_at"`
}

func (ModuleModel) TableName() string { return "cpr_modules" }

type TopicModel struct {
	CPRTopicID       uuid.UUID `gorm:"type:uuid;primaryKey;column:cpr_topic_id" json:"cpr_topic_id"`
	CPRTopicModuleID uuid.UUID `gorm:"type:uuid;not null;index;column:cpr_topic_module_id" json:"cpr_topic_module_id"`
	CPRTopicOrder    int       `gorm:"not null;column:cpr_topic_order" json:"cpr_topic_order"`
	CPRTopicName     string    `gorm:"type:varchar(200);not null;column:cpr_topic_name" json:"cpr_topic_name"`
}

func (TopicModel) TableName() string { return "cpr_topics" }

// Planned* diturunkan dari timetable (bukan input manusia); Start == End atau dua-duanya nil.
type SubTopicModel struct {
	CPRSubTopicID            uuid.UUID      `gorm:"type:uuid;primaryKey;column:cpr_sub_topic_id" json:"cpr_sub_topic_id"`
	CPRSubTopicTopicID       uuid.UUID      `gorm:"type:uuid;not null;index;column:cpr_sub_topic_topic_id" json:"cpr_sub_topic_topic_id"`
	CPRSubTopicOrder         int            `gorm:"not null;column:cpr_sub_topic_order" json:"cpr_sub_topic_order"`
	CPRSubTopicName          string         `gorm:"type:varchar(255);not null;column:cpr_sub_topic_name" json:"cpr_sub_topic_name"`
	CPRSubTopicLectureNumber int            `gorm:"not null;index;column:cpr_sub_topic_lecture_number" json:"cpr_sub_topic_lecture_number"`
	CPRSubTopicStatus        SubTopicStatus `gorm:"type:varchar(20);not null;default:'PENDING';column:cpr_sub_topic_status" json:"cpr_sub_topic_status"`

	CPRSubTopicPlannedStart *datatypes.Date `gorm:"column:cpr_sub_topic_planned_start" json:"cpr_sub_topic_planned_start"`
	CPRSubTopicPlannedEnd   *datatypes.Date `gorm:"column:cpr_sub_topic_planned_end" json:"cpr_sub_topic_planned_end"`
	CPRSubTopicActualStart  *datatypes.Date `gorm:"column:cpr_sub_topic_actual_start" json:"cpr_sub_topic_actual_start"`
	CPRSubTopicActualEnd    *datatypes.Date `gorm:"column:cpr_sub_topic_actual_end" json:"cpr_sub_topic_actual_end"`

	CPRSubTopicUpdatedAt time.Time `gorm:"column:cpr_sub_topic_updated_at;autoUpdateTime" json:"cpr_sub_topic_updated_at"`
}

func (SubTopicModel) TableName() string { return "cpr_sub_topics" }

func (m *ModuleModel) BeforeCreate(tx *gorm.DB) error {
	if m.CPRModuleID == uuid.Nil {
		m.CPRModuleID = uuid.New()
	}
	return nil
}

func (m *TopicModel) BeforeCreate(tx *gorm.DB) error {
	if m.CPRTopicID == uuid.Nil {
		m.CPRTopicID = uuid.New()
	}
	return nil
}

func (m *SubTopicModel) BeforeCreate(tx *gorm.DB) error {
	if m.CPRSubTopicID == uuid.Nil {
		m.CPRSubTopicID = uuid.New()
	}
	if m.CPRSubTopicStatus == "" {
		m.CPRSubTopicStatus = SubTopicPending
	}
	return nil
}
