// file: internals/features/academics/timetable/service/generator.go
package service

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pwioi_backend/internals/helpers/dbtime"
)

const defaultMaxScheduleDays = 366

/* =========================
   Input & output
========================= */

// TemplateItem: satu slot mingguan (transient, tidak disimpan).
type TemplateItem struct {
	DayOfWeek     string `json:"day_of_week"`
	StartTime     string `json:"start_time"` // HH:mm[:ss]
	EndTime       string `json:"end_time"`
	LectureNumber string `json:"lecture_number"`
}

// Candidate: session konkret hasil ekspansi, instant dalam UTC.
type Candidate struct {
	StartAt       time.Time
	EndAt         time.Time
	LectureNumber string
}

func (c Candidate) Interval() Interval { return Interval{Start: c.StartAt, End: c.EndAt} }

type GenerateOptions struct {
	RangeStart time.Time
	RangeEnd   time.Time // candidate dengan EndAt > RangeEnd dibuang
	Location   *time.Location

	// Kebijakan slot lampau: false = slot yang mulai sebelum Now dibuang
	AllowPast bool
	Now       func() time.Time

	MaxRangeDays int
}

type SkippedItem struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type parsedItem struct {
	weekday time.Weekday
	start   dbtime.Tod
	end     dbtime.Tod
	lecture string
}

/* =========================
   Generator
========================= */

type Generator struct {
	items     []parsedItem
	startDay  time.Time
	endDay    time.Time
	rangeEnd  time.Time
	loc       *time.Location
	allowPast bool
	now       func() time.Time

	Skipped []SkippedItem
}

// NewGenerator memvalidasi rentang & template. Item rusak di-skip (dicatat di Skipped);
// kalau tidak ada satu pun item valid → error 400.
func NewGenerator(items []TemplateItem, opts GenerateOptions) (*Generator, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	maxDays := opts.MaxRangeDays
	if maxDays <= 0 {
		maxDays = defaultMaxScheduleDays
	}

	if opts.RangeStart.IsZero() || opts.RangeEnd.IsZero() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "date range start and end are required")
	}
	startDay := startOfDayInLoc(opts.RangeStart, loc)
	endDay := startOfDayInLoc(opts.RangeEnd, loc)
	if endDay.Before(startDay) || opts.RangeEnd.Before(opts.RangeStart) {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
			"invalid date range: start (%s) after end (%s)",
			startDay.Format("2006-01-02"), endDay.Format("2006-01-02")))
	}
	if span := daysBetween(startDay, endDay) + 1; span > maxDays {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
			"date range too long: %d days (max %d)", span, maxDays))
	}

	g := &Generator{
		startDay:  startDay,
		endDay:    endDay,
		rangeEnd:  opts.RangeEnd,
		loc:       loc,
		allowPast: opts.AllowPast,
		now:       now,
	}
	for i, it := range items {
		p, reason := parseTemplateItem(it)
		if reason != "" {
			g.Skipped = append(g.Skipped, SkippedItem{Index: i, Reason: reason})
			continue
		}
		g.items = append(g.items, p)
	}
	if len(g.items) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "no valid schedule template items")
	}
	return g, nil
}

// Candidates: sequence lazy & finite; bisa diiterasi ulang (restartable).
// Urutan: per hari, lalu urutan item template.
func (g *Generator) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		cutoff := g.now()
		for d := g.startDay; !d.After(g.endDay); d = d.AddDate(0, 0, 1) {
			wd := d.Weekday()
			for _, it := range g.items {
				if it.weekday != wd {
					continue
				}
				startAt := combineLocalDateAndTOD(d, it.start, g.loc).UTC()
				endAt := combineLocalDateAndTOD(d, it.end, g.loc).UTC()
				if endAt.After(g.rangeEnd) {
					continue
				}
				if !g.allowPast && startAt.Before(cutoff) {
					continue
				}
				if !yield(Candidate{StartAt: startAt, EndAt: endAt, LectureNumber: it.lecture}) {
					return
				}
			}
		}
	}
}

// Collect: materialisasi semua candidate.
func (g *Generator) Collect() []Candidate {
	var out []Candidate
	for c := range g.Candidates() {
		out = append(out, c)
	}
	return out
}

/* =========================
   Helpers (waktu & template)
========================= */

func parseTemplateItem(it TemplateItem) (parsedItem, string) {
	wd, ok := ParseWeekday(it.DayOfWeek)
	if !ok {
		return parsedItem{}, fmt.Sprintf("invalid day_of_week %q", it.DayOfWeek)
	}
	st, err := dbtime.Parse(it.StartTime)
	if err != nil {
		return parsedItem{}, fmt.Sprintf("invalid start_time %q", it.StartTime)
	}
	et, err := dbtime.Parse(it.EndTime)
	if err != nil {
		return parsedItem{}, fmt.Sprintf("invalid end_time %q", it.EndTime)
	}
	if !st.Before(et.Time) {
		return parsedItem{}, "end_time must be after start_time"
	}
	lecture := strings.TrimSpace(it.LectureNumber)
	if lecture == "" {
		return parsedItem{}, "lecture_number is required"
	}
	return parsedItem{weekday: wd, start: st, end: et, lecture: lecture}, ""
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday: nama hari (case-insensitive, full / singkat) atau ISO 1..7 (1 = Senin).
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, true
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 7 {
		return time.Weekday(n % 7), true
	}
	return 0, false
}

func startOfDayInLoc(t time.Time, loc *time.Location) time.Time {
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

func combineLocalDateAndTOD(dLocal time.Time, tod dbtime.Tod, loc *time.Location) time.Time {
	return tod.On(dLocal, loc)
}

// daysBetween: selisih hari kalender (aman terhadap DST).
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
