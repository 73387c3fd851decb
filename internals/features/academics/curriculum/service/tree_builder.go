// file: internals/features/academics/curriculum/service/tree_builder.go
package service

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ImportRow: satu baris sumber import (xlsx / JSON), urutan baris = urutan kurikulum.
type ImportRow struct {
	ModuleName    string
	TopicName     string
	SubTopicName  string
	LectureNumber string
}

type SkippedRow struct {
	Row    int    `json:"row"` // 1-based, urutan input
	Reason string `json:"reason"`
}

type SubTopicDraft struct {
	Order         int
	Name          string
	LectureNumber int
}

type TopicDraft struct {
	Order     int
	Name      string
	SubTopics []SubTopicDraft
}

type ModuleDraft struct {
	Order  int
	Name   string
	Topics []TopicDraft
}

// BuildTree: group module → topic (first-seen), order 1-based per level.
// Baris rusak di-skip dan dicatat.
func BuildTree(rows []ImportRow) ([]ModuleDraft, []SkippedRow) {
	var (
		modules  []ModuleDraft
		skipped  []SkippedRow
		modIdx   = map[string]int{}
		topicIdx = map[string]int{}
	)

	for i, r := range rows {
		mod := CleanName(r.ModuleName)
		top := CleanName(r.TopicName)
		sub := CleanName(r.SubTopicName)
		lec, lecOK := ParseLecture(r.LectureNumber)

		switch {
		case mod == "":
			skipped = append(skipped, SkippedRow{Row: i + 1, Reason: "module name is empty"})
			continue
		case top == "":
			skipped = append(skipped, SkippedRow{Row: i + 1, Reason: "topic name is empty"})
			continue
		case sub == "":
			skipped = append(skipped, SkippedRow{Row: i + 1, Reason: "sub-topic name is empty"})
			continue
		case !lecOK:
			skipped = append(skipped, SkippedRow{Row: i + 1, Reason: fmt.Sprintf("invalid lecture number %q", r.LectureNumber)})
			continue
		}

		mi, ok := modIdx[mod]
		if !ok {
			mi = len(modules)
			modIdx[mod] = mi
			modules = append(modules, ModuleDraft{Order: mi + 1, Name: mod})
		}

		tkey := mod + "\x00" + top
		ti, ok := topicIdx[tkey]
		if !ok {
			ti = len(modules[mi].Topics)
			topicIdx[tkey] = ti
			modules[mi].Topics = append(modules[mi].Topics, TopicDraft{Order: ti + 1, Name: top})
		}

		t := &modules[mi].Topics[ti]
		t.SubTopics = append(t.SubTopics, SubTopicDraft{
			Order:         len(t.SubTopics) + 1,
			Name:          sub,
			LectureNumber: lec,
		})
	}
	return modules, skipped
}

// CleanName: trim, rapikan spasi, Unicode NFC.
func CleanName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// ParseLecture: bilangan bulat positif; "3.0" dari spreadsheet diterima.
func ParseLecture(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) || f <= 0 {
		return 0, false
	}
	return int(f), true
}

func countTree(mods []ModuleDraft) (topics, subTopics int) {
	for _, m := range mods {
		topics += len(m.Topics)
		for _, t := range m.Topics {
			subTopics += len(t.SubTopics)
		}
	}
	return
}
