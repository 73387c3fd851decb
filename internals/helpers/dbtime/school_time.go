// file: internals/helpers/dbtime/school_time.go
package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// Locals yang di-set middleware SchoolTimezone
const (
	LocSchoolTimezone = "school_timezone" // string, misal "Asia/Kolkata"
	LocSchoolLoc      = "school_loc"      // *time.Location
)

const DateLayout = "2006-01-02"

// GetSchoolLocation:
// 1) c.Locals("school_loc") dari middleware
// 2) c.Locals("school_timezone") → LoadLocation
// 3) fallback
func GetSchoolLocation(c *fiber.Ctx, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if c == nil {
		return fallback
	}
	if v, ok := c.Locals(LocSchoolLoc).(*time.Location); ok && v != nil {
		return v
	}
	if s, ok := c.Locals(LocSchoolTimezone).(string); ok && strings.TrimSpace(s) != "" {
		if loc, err := time.LoadLocation(strings.TrimSpace(s)); err == nil {
			c.Locals(LocSchoolLoc, loc)
			return loc
		}
	}
	return fallback
}

// ParseDate: "YYYY-MM-DD" → tengah malam di loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// ParseInstant: RFC3339, atau tanggal saja (tengah malam di loc).
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return ParseDate(s, loc)
}

// EndOfDay: instant terakhir hari lokal t.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DateOf: tanggal kalender t di loc, disimpan sebagai tengah malam UTC.
func DateOf(t time.Time, loc *time.Location) datatypes.Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DatePtr: versi pointer dari DateOf.
func DatePtr(t time.Time, loc *time.Location) *datatypes.Date {
	d := DateOf(t, loc)
	return &d
}

// FormatDate: nil → "".
func FormatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(DateLayout)
}

// SameOrBefore: perbandingan tanggal saja (komponen y/m/d).
func SameOrBefore(a, b datatypes.Date) bool {
	ta, tb := dayKey(time.Time(a)), dayKey(time.Time(b))
	return ta <= tb
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Today: tanggal hari ini di loc (untuk kalkulasi progress).
func Today(now time.Time, loc *time.Location) datatypes.Date {
	return DateOf(now, loc)
}
