package dbtime

import (
	"testing"
	"time"
)

func TestTodParse(t *testing.T) {
	for in, want := range map[string]string{"09:00": "09:00", " 7:30 ": "", "23:59:59": "23:59", "24:00": ""} {
		got, err := Parse(in)
		if want == "" {
			if err == nil {
				t.Errorf("Parse(%q) accepted: %s", in, got)
			}
			continue
		}
		if err != nil || got.String() != want {
			t.Errorf("Parse(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
}

func TestTodOnAcrossZones(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata: %v", err)
	}
	tod, _ := Parse("09:00")
	// sebelum & sesudah DST 2025-03-09
	before := tod.On(time.Date(2025, 3, 7, 0, 0, 0, 0, ny), ny).UTC()
	after := tod.On(time.Date(2025, 3, 10, 0, 0, 0, 0, ny), ny).UTC()
	if before.Hour() != 14 || after.Hour() != 13 {
		t.Fatalf("utc hours = %d / %d, want 14 / 13", before.Hour(), after.Hour())
	}
}

func TestDateHelpers(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata: %v", err)
	}
	instant := time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC) // 01:30 tgl 4 di Kolkata
	d := DateOf(instant, kolkata)
	if s := FormatDate(&d); s != "2025-03-04" {
		t.Fatalf("DateOf = %s", s)
	}
	if FormatDate(nil) != "" {
		t.Fatal("FormatDate(nil) should be empty")
	}
	if !SameOrBefore(DateOf(instant, time.UTC), d) || SameOrBefore(d, DateOf(instant, time.UTC)) {
		t.Fatal("SameOrBefore ordering")
	}
	if !SameOrBefore(d, d) {
		t.Fatal("SameOrBefore must be inclusive")
	}

	eod := EndOfDay(instant, kolkata)
	if got := eod.In(kolkata).Format("2006-01-02 15:04:05"); got != "2025-03-04 23:59:59" {
		t.Fatalf("EndOfDay = %s", got)
	}

	if _, err := ParseInstant("2025-03-03T09:00:00+07:00", kolkata); err != nil {
		t.Fatalf("ParseInstant rfc3339: %v", err)
	}
	if got, err := ParseInstant("2025-03-03", kolkata); err != nil || got.Location() != kolkata || got.Hour() != 0 {
		t.Fatalf("ParseInstant date = %v, %v", got, err)
	}
	if _, err := ParseInstant("3 March", kolkata); err == nil {
		t.Fatal("ParseInstant accepted garbage")
	}
}
