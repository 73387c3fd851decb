// file: internals/features/academics/timetable/calendar/notifier.go
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

/*
   Sinkronisasi kalender: best-effort, dipanggil SETELAH commit.
   Gagal di sini tidak pernah membatalkan jadwal yang sudah tersimpan.
*/

const notifyTimeout = 30 * time.Second

type SessionEvent struct {
	SessionID     uuid.UUID
	SubjectName   string
	SubjectCode   string
	LectureNumber string
	StartAt       time.Time
	EndAt         time.Time
}

type Notifier interface {
	Upsert(ctx context.Context, events []SessionEvent) error
	Remove(ctx context.Context, sessionIDs []uuid.UUID) error
}

// NotifyAsync: fire-and-forget dengan timeout & recover; hanya log.
func NotifyAsync(tag string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[CALENDAR] %s panic: %v", tag, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("[CALENDAR] %s failed: %v", tag, err)
		}
	}()
}

/* =========================
   LogNotifier (default)
========================= */

type LogNotifier struct{}

func (LogNotifier) Upsert(_ context.Context, events []SessionEvent) error {
	log.Printf("[CALENDAR] upsert %d session(s) (no calendar configured)", len(events))
	return nil
}

func (LogNotifier) Remove(_ context.Context, ids []uuid.UUID) error {
	log.Printf("[CALENDAR] remove %d session(s) (no calendar configured)", len(ids))
	return nil
}

/* =========================
   Google Calendar
========================= */

type GoogleNotifier struct {
	svc        *gcal.Service
	calendarID string
}

func NewGoogleNotifier(ctx context.Context, credentialsFile, calendarID string) (*GoogleNotifier, error) {
	if strings.TrimSpace(credentialsFile) == "" || strings.TrimSpace(calendarID) == "" {
		return nil, errors.New("google calendar: credentials file and calendar id are required")
	}
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("google calendar: %w", err)
	}
	return &GoogleNotifier{svc: svc, calendarID: calendarID}, nil
}

// EventID: id deterministik dari session id (base32hex-safe: hex tanpa dash).
func EventID(sessionID uuid.UUID) string {
	return strings.ReplaceAll(sessionID.String(), "-", "")
}

func toEvent(e SessionEvent) *gcal.Event {
	title := strings.TrimSpace(e.SubjectName)
	if e.SubjectCode != "" {
		title = e.SubjectCode + " " + title
	}
	return &gcal.Event{
		Id:          EventID(e.SessionID),
		Summary:     fmt.Sprintf("%s (Lecture %s)", strings.TrimSpace(title), e.LectureNumber),
		Description: "class session " + e.SessionID.String(),
		Start:       &gcal.EventDateTime{DateTime: e.StartAt.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: e.EndAt.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
}

func (g *GoogleNotifier) Upsert(ctx context.Context, events []SessionEvent) error {
	var errs []error
	for _, e := range events {
		ev := toEvent(e)
		_, err := g.svc.Events.Update(g.calendarID, ev.Id, ev).Context(ctx).Do()
		if isStatus(err, http.StatusNotFound) {
			_, err = g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", e.SessionID, err))
		}
	}
	return errors.Join(errs...)
}

func (g *GoogleNotifier) Remove(ctx context.Context, ids []uuid.UUID) error {
	var errs []error
	for _, id := range ids {
		err := g.svc.Events.Delete(g.calendarID, EventID(id)).Context(ctx).Do()
		if err != nil && !isStatus(err, http.StatusNotFound) && !isStatus(err, http.StatusGone) {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func isStatus(err error, code int) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

// FromConfig: Google kalau dikonfigurasi, selain itu LogNotifier.
func FromConfig(ctx context.Context, credentialsFile, calendarID string) Notifier {
	if credentialsFile == "" || calendarID == "" {
		return LogNotifier{}
	}
	g, err := NewGoogleNotifier(ctx, credentialsFile, calendarID)
	if err != nil {
		log.Printf("[CALENDAR] google notifier disabled: %v", err)
		return LogNotifier{}
	}
	log.Printf("[CALENDAR] google calendar sync enabled (%s)", calendarID)
	return g
}
