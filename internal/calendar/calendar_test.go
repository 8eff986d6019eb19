package calendar

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// icsFixture returns a minimal two-event calendar. One event starts on
// September 1 2026, the other on September 2 2026. The feed performs no
// date filtering of its own.
func icsFixture() string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Daybreak Test//EN",
		"BEGIN:VEVENT",
		"UID:event-1",
		"DTSTAMP:20260901T000000Z",
		"DTSTART:20260901T140000Z",
		"SUMMARY:Dentist appointment",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:event-2",
		"DTSTAMP:20260901T000000Z",
		"DTSTART:20260902T090000Z",
		"SUMMARY:Car inspection",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}
	return strings.Join(lines, "\r\n")
}

func serveICS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(body))
	}))
}

func TestToday_FiltersToCurrentDate(t *testing.T) {
	ts := serveICS(t, icsFixture())
	defer ts.Close()

	f := NewFeed(ts.URL, time.UTC, testLogger())
	f.now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }

	events, err := f.Today(context.Background())
	if err != nil {
		t.Fatalf("Today error: %v", err)
	}
	if len(events) != 1 || events[0] != "Dentist appointment" {
		t.Errorf("events = %v, want [Dentist appointment]", events)
	}
}

func TestToday_NoEvents(t *testing.T) {
	ts := serveICS(t, icsFixture())
	defer ts.Close()

	f := NewFeed(ts.URL, time.UTC, testLogger())
	// September 3: neither event matches and it is not a US holiday.
	f.now = func() time.Time { return time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC) }

	events, err := f.Today(context.Background())
	if err != nil {
		t.Fatalf("Today error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}

	frag, err := f.Fragment(context.Background())
	if err != nil {
		t.Fatalf("Fragment error: %v", err)
	}
	if frag != "" {
		t.Errorf("Fragment = %q, want empty", frag)
	}
}

func TestToday_HolidayAppended(t *testing.T) {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Daybreak Test//EN",
		"BEGIN:VEVENT",
		"UID:event-1",
		"DTSTAMP:20260101T000000Z",
		"DTSTART:20260101T170000Z",
		"SUMMARY:Brunch with family",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}
	ts := serveICS(t, strings.Join(lines, "\r\n"))
	defer ts.Close()

	f := NewFeed(ts.URL, time.UTC, testLogger())
	f.now = func() time.Time { return time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC) }

	frag, err := f.Fragment(context.Background())
	if err != nil {
		t.Fatalf("Fragment error: %v", err)
	}
	want := "And Today's calendar events: Brunch with family, New Year's Day"
	if frag != want {
		t.Errorf("Fragment = %q, want %q", frag, want)
	}
}

func TestToday_HolidayOnly(t *testing.T) {
	empty := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Daybreak Test//EN",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	ts := serveICS(t, empty)
	defer ts.Close()

	f := NewFeed(ts.URL, time.UTC, testLogger())
	f.now = func() time.Time { return time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC) }

	frag, err := f.Fragment(context.Background())
	if err != nil {
		t.Fatalf("Fragment error: %v", err)
	}
	want := "And Today's calendar events: New Year's Day"
	if frag != want {
		t.Errorf("Fragment = %q, want %q", frag, want)
	}
}

func TestToday_FeedError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer ts.Close()

	f := NewFeed(ts.URL, time.UTC, testLogger())
	if _, err := f.Today(context.Background()); err == nil {
		t.Fatal("expected error for failing feed")
	}
}
