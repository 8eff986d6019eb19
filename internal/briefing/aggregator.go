package briefing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSourceTimeout bounds a single source fetch when no explicit
// timeout is configured. A hung source must not stall the pipeline.
const DefaultSourceTimeout = 15 * time.Second

// Aggregator invokes every context source and collects the available
// fragments. Source order is fixed at construction; it determines fragment
// order in the prompt no matter which sources respond first or fail.
type Aggregator struct {
	sources []Source
	timeout time.Duration
	logger  *slog.Logger

	// now is the clock used for the time-of-day label, injectable for tests.
	now func() time.Time
}

// NewAggregator creates an aggregator over the given sources, in prompt
// order.
func NewAggregator(logger *slog.Logger, timeout time.Duration, sources ...Source) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	return &Aggregator{
		sources: sources,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// SetLocation pins the clock used for the time-of-day label to the given
// timezone. The default is the system's local time.
func (a *Aggregator) SetLocation(loc *time.Location) {
	a.now = func() time.Time { return time.Now().In(loc) }
}

// Collect fetches all sources concurrently and returns the time-of-day
// label plus the fragments that were available, in declared order. A
// failed source is logged and omitted; Collect itself never fails.
func (a *Aggregator) Collect(ctx context.Context) (TimeOfDay, []Fragment) {
	texts := make([]string, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			text, err := src.Fetch(fetchCtx)
			if err != nil {
				a.logger.Error("context source failed", "source", src.Name(), "error", err)
				return
			}
			texts[i] = text
		}(i, src)
	}
	wg.Wait()

	// Reconstruct in declared order, dropping sources that failed or had
	// nothing to say. No placeholders.
	fragments := make([]Fragment, 0, len(a.sources))
	for i, src := range a.sources {
		if texts[i] == "" {
			continue
		}
		fragments = append(fragments, Fragment{Label: src.Name(), Text: texts[i]})
	}

	return TimeOfDayAt(a.now()), fragments
}
