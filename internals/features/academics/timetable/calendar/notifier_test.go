package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type fakeCalendar struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodPut:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
	case http.MethodPost:
		_, _ = w.Write([]byte(`{"id":"x","status":"confirmed"}`))
	case http.MethodDelete:
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte(`{"error":{"code":410,"message":"Deleted"}}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestNotifier(t *testing.T, h http.Handler) *GoogleNotifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	svc, err := gcal.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatal(err)
	}
	return &GoogleNotifier{svc: svc, calendarID: "primary"}
}

func TestGoogleNotifierUpsertFallsBackToInsert(t *testing.T) {
	fake := &fakeCalendar{}
	g := newTestNotifier(t, fake)
	id := uuid.New()

	err := g.Upsert(context.Background(), []SessionEvent{{
		SessionID:     id,
		SubjectName:   "Physics",
		SubjectCode:   "PHY",
		LectureNumber: "3",
		StartAt:       time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	}})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(fake.calls) != 2 ||
		!strings.HasPrefix(fake.calls[0], "PUT ") || !strings.HasSuffix(fake.calls[0], "/events/"+EventID(id)) ||
		!strings.HasPrefix(fake.calls[1], "POST ") {
		t.Fatalf("calls = %v", fake.calls)
	}
}

func TestGoogleNotifierRemoveIgnoresGone(t *testing.T) {
	fake := &fakeCalendar{}
	g := newTestNotifier(t, fake)
	if err := g.Remove(context.Background(), []uuid.UUID{uuid.New(), uuid.New()}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("calls = %v", fake.calls)
	}
}

func TestGoogleNotifierReportsServerErrors(t *testing.T) {
	g := newTestNotifier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	err := g.Remove(context.Background(), []uuid.UUID{uuid.New()})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestEventIDAndTitle(t *testing.T) {
	id := uuid.MustParse("0b8a2a4e-5d1c-4a8e-9a57-3c1f2d9e7b10")
	if got := EventID(id); got != "0b8a2a4e5d1c4a8e9a573c1f2d9e7b10" {
		t.Fatalf("EventID = %s", got)
	}
	ev := toEvent(SessionEvent{SessionID: id, SubjectName: " Physics ", SubjectCode: "PHY", LectureNumber: "2"})
	if ev.Summary != "PHY Physics (Lecture 2)" {
		t.Fatalf("summary = %q", ev.Summary)
	}
}

func TestFromConfigWithoutCredentials(t *testing.T) {
	if _, ok := FromConfig(context.Background(), "", "primary").(LogNotifier); !ok {
		t.Fatal("expected LogNotifier")
	}
	if _, ok := FromConfig(context.Background(), "/does/not/exist.json", "primary").(LogNotifier); !ok {
		t.Fatal("expected LogNotifier fallback on bad credentials")
	}
}

func TestNotifyAsyncRecovers(t *testing.T) {
	done := make(chan struct{})
	NotifyAsync("test", func(ctx context.Context) error {
		defer close(done)
		if _, ok := ctx.Deadline(); !ok {
			t.Error("ctx without deadline")
		}
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notify did not run")
	}
}
