// file: internals/helpers/dbtime/tod.go
package dbtime

import (
	"fmt"
	"strings"
	"time"
)

// Tod = time-of-day tanpa tanggal & zona (dipakai template jadwal mingguan).
type Tod struct{ time.Time }

// Parse: "HH:MM" atau "HH:MM:SS", 24 jam.
func Parse(s string) (Tod, error) {
	var tt Tod
	return tt, tt.parse(s)
}

func (t *Tod) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	tt, err := time.Parse("15:04:05", s)
	if err != nil {
		return fmt.Errorf("tod: invalid time-of-day %q", s)
	}
	t.Time = tt
	return nil
}

func (t Tod) String() string { return t.Format("15:04") }

// On: gabungkan dengan tanggal lokal d di loc.
func (t Tod) On(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}
