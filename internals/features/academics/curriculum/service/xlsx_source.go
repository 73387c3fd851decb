// file: internals/features/academics/curriculum/service/xlsx_source.go
package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// Kolom default kalau header tidak dikenali: A=module, B=topic, C=sub-topic, D=lecture.
var defaultColumns = xlsxColumns{module: 0, topic: 1, subTopic: 2, lecture: 3}

type xlsxColumns struct {
	module, topic, subTopic, lecture int
}

// ReadXLSXRows: sheet pertama → ImportRow, urutan baris dipertahankan.
func ReadXLSXRows(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cannot read xlsx: "+err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "xlsx has no sheet")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx rows: %w", err)
	}

	cols, start := defaultColumns, 0
	for i, row := range rows {
		if c, ok := detectHeader(row); ok {
			cols, start = c, i+1
			break
		}
		if i >= 5 {
			break
		}
	}

	out := make([]ImportRow, 0, len(rows)-start)
	for _, row := range rows[start:] {
		if isBlankRow(row) {
			continue
		}
		out = append(out, ImportRow{
			ModuleName:    cell(row, cols.module),
			TopicName:     cell(row, cols.topic),
			SubTopicName:  cell(row, cols.subTopic),
			LectureNumber: cell(row, cols.lecture),
		})
	}
	return out, nil
}

func detectHeader(row []string) (xlsxColumns, bool) {
	c := xlsxColumns{module: -1, topic: -1, subTopic: -1, lecture: -1}
	for i, raw := range row {
		h := headerKey(raw)
		switch {
		case strings.Contains(h, "subtopic"):
			c.subTopic = i
		case strings.Contains(h, "module"):
			c.module = i
		case strings.Contains(h, "topic"):
			c.topic = i
		case strings.Contains(h, "lecture"):
			c.lecture = i
		}
	}
	if c.module < 0 || c.topic < 0 || c.subTopic < 0 || c.lecture < 0 {
		return xlsxColumns{}, false
	}
	return c, true
}

func headerKey(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
