// file: internals/features/academics/curriculum/dto/curriculum_dto.go
package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	m "pwioi_backend/internals/features/academics/curriculum/model"
	svc "pwioi_backend/internals/features/academics/curriculum/service"
	"pwioi_backend/internals/helpers/dbtime"
)

/* =========================
   Requests
========================= */

// LectureValue: lecture_number boleh dikirim sebagai angka atau string.
type LectureValue string

func (v *LectureValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = LectureValue(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	*v = LectureValue(string(b))
	return nil
}

type CurriculumRowRequest struct {
	ModuleName    string       `json:"module_name"`
	TopicName     string       `json:"topic_name"`
	SubTopicName  string       `json:"sub_topic_name"`
	LectureNumber LectureValue `json:"lecture_number"`
}

// ReplaceCurriculumRequest: baris rusak di-skip (bukan ditolak), jadi field baris tidak divalidasi di sini.
type ReplaceCurriculumRequest struct {
	Rows []CurriculumRowRequest `json:"rows" validate:"required,min=1"`
}

func (r ReplaceCurriculumRequest) ToImportRows() []svc.ImportRow {
	out := make([]svc.ImportRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, svc.ImportRow{
			ModuleName:    row.ModuleName,
			TopicName:     row.TopicName,
			SubTopicName:  row.SubTopicName,
			LectureNumber: string(row.LectureNumber),
		})
	}
	return out
}

type UpdateSubTopicStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED pending in_progress completed"`
	Date   *string `json:"date"` // YYYY-MM-DD, default hari ini (timezone sekolah)
}

func (r UpdateSubTopicStatusRequest) StatusValue() m.SubTopicStatus {
	return m.SubTopicStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
}

/* =========================
   Responses
========================= */

type SubTopicResponse struct {
	ID            uuid.UUID `json:"cpr_sub_topic_id"`
	Order         int       `json:"cpr_sub_topic_order"`
	Name          string    `json:"cpr_sub_topic_name"`
	LectureNumber int       `json:"cpr_sub_topic_lecture_number"`
	Status        string    `json:"cpr_sub_topic_status"`
	PlannedStart  string    `json:"cpr_sub_topic_planned_start,omitempty"`
	PlannedEnd    string    `json:"cpr_sub_topic_planned_end,omitempty"`
	ActualStart   string    `json:"cpr_sub_topic_actual_start,omitempty"`
	ActualEnd     string    `json:"cpr_sub_topic_actual_end,omitempty"`
	UpdatedAt     time.Time `json:"cpr_sub_topic_updated_at"`
}

type TopicResponse struct {
	ID        uuid.UUID          `json:"cpr_topic_id"`
	Order     int                `json:"cpr_topic_order"`
	Name      string             `json:"cpr_topic_name"`
	SubTopics []SubTopicResponse `json:"sub_topics"`
}

type ModuleResponse struct {
	ID     uuid.UUID       `json:"cpr_module_id"`
	Order  int             `json:"cpr_module_order"`
	Name   string          `json:"cpr_module_name"`
	Topics []TopicResponse `json:"topics"`
}

func FromSubTopic(s m.SubTopicModel) SubTopicResponse {
	return SubTopicResponse{
		ID:            s.CPRSubTopicID,
		Order:         s.CPRSubTopicOrder,
		Name:          s.CPRSubTopicName,
		LectureNumber: s.CPRSubTopicLectureNumber,
		Status:        string(s.CPRSubTopicStatus),
		PlannedStart:  dbtime.FormatDate(s.CPRSubTopicPlannedStart),
		PlannedEnd:    dbtime.FormatDate(s.CPRSubTopicPlannedEnd),
		ActualStart:   dbtime.FormatDate(s.CPRSubTopicActualStart),
		ActualEnd:     dbtime.FormatDate(s.CPRSubTopicActualEnd),
		UpdatedAt:     s.CPRSubTopicUpdatedAt,
	}
}

// FromTree: susun nested response; input sudah terurut per level.
func FromTree(t *svc.Tree) []ModuleResponse {
	subsByTopic := map[uuid.UUID][]SubTopicResponse{}
	for _, s := range t.SubTopics {
		subsByTopic[s.CPRSubTopicTopicID] = append(subsByTopic[s.CPRSubTopicTopicID], FromSubTopic(s))
	}
	topicsByModule := map[uuid.UUID][]TopicResponse{}
	for _, tp := range t.Topics {
		subs := subsByTopic[tp.CPRTopicID]
		if subs == nil {
			subs = []SubTopicResponse{}
		}
		topicsByModule[tp.CPRTopicModuleID] = append(topicsByModule[tp.CPRTopicModuleID], TopicResponse{
			ID:        tp.CPRTopicID,
			Order:     tp.CPRTopicOrder,
			Name:      tp.CPRTopicName,
			SubTopics: subs,
		})
	}
	out := make([]ModuleResponse, 0, len(t.Modules))
	for _, md := range t.Modules {
		topics := topicsByModule[md.CPRModuleID]
		if topics == nil {
			topics = []TopicResponse{}
		}
		out = append(out, ModuleResponse{
			ID:     md.CPRModuleID,
			Order:  md.CPRModuleOrder,
			Name:   md.CPRModuleName,
			Topics: topics,
		})
	}
	return out
}
