// Package calendar produces the "today's events" block of the daily
// briefing from an ICS feed, with US public holidays merged into the same
// list.
package calendar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"github.com/daybreak-home/daybreak/internal/httpkit"
)

// maxFeedSize bounds how much ICS data we will read from the feed.
const maxFeedSize = 4 << 20 // 4 MB

// Feed fetches an ICS calendar feed and reports the events for today.
type Feed struct {
	url        string
	loc        *time.Location
	httpClient *http.Client
	logger     *slog.Logger
	holidays   *cal.Calendar

	// now is the clock, injectable for tests.
	now func() time.Time
}

// NewFeed creates a calendar feed reader. Events are compared against the
// current date in loc.
func NewFeed(url string, loc *time.Location, logger *slog.Logger) *Feed {
	holidays := &cal.Calendar{}
	holidays.AddHoliday(us.Holidays...)

	return &Feed{
		url:        url,
		loc:        loc,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(15 * time.Second)),
		logger:     logger,
		holidays:   holidays,
		now:        time.Now,
	}
}

// Fragment returns the calendar block for the briefing, combining today's
// event titles and any public holiday into one comma-separated list. An
// empty string with nil error means there is nothing on the calendar today.
func (f *Feed) Fragment(ctx context.Context) (string, error) {
	items, err := f.Today(ctx)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}
	return "And Today's calendar events: " + strings.Join(items, ", "), nil
}

// Today returns the titles of events starting on the current local date,
// with any US holiday name appended. Feed-side date filtering is not
// trusted; every event's start date is compared here.
func (f *Feed) Today(ctx context.Context) ([]string, error) {
	today := f.now().In(f.loc)

	events, err := f.eventsOn(ctx, today)
	if err != nil {
		return nil, err
	}

	if _, _, holiday := f.holidays.IsHoliday(today); holiday != nil {
		events = append(events, holiday.Name)
	}

	f.logger.Info("calendar events", "date", today.Format("2006-01-02"), "events", events)
	return events, nil
}

// eventsOn fetches the feed and returns the summaries of events whose
// start date equals day in the feed's location.
func (f *Feed) eventsOn(ctx context.Context, day time.Time) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, maxFeedSize)

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 512)
		return nil, fmt.Errorf("calendar feed returned %d: %s", resp.StatusCode, body)
	}

	return summariesOn(io.LimitReader(resp.Body, maxFeedSize), day, f.loc)
}

// summariesOn decodes an ICS stream and returns the summaries of events
// starting on day.
func summariesOn(r io.Reader, day time.Time, loc *time.Location) ([]string, error) {
	y, m, d := day.Date()

	var summaries []string
	dec := ical.NewDecoder(r)
	for {
		calendar, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode calendar: %w", err)
		}

		for _, event := range calendar.Events() {
			start, err := event.DateTimeStart(loc)
			if err != nil {
				continue
			}
			ey, em, ed := start.In(loc).Date()
			if ey != y || em != m || ed != d {
				continue
			}

			prop := event.Props.Get(ical.PropSummary)
			if prop == nil {
				continue
			}
			summary := prop.Value
			if text, err := prop.Text(); err == nil {
				summary = text
			}
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}
