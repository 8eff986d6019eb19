// Package briefing assembles the daily status message. It collects text
// fragments from several independent context sources, renders them into a
// two-role completion prompt, and generates the final message through the
// completion service.
//
// The central policy lives here: a failing source degrades the prompt but
// never blocks it. Generation is always attempted with whatever context
// is available, down to the degenerate case of no fragments at all.
package briefing

import (
	"context"
	"time"
)

// TimeOfDay labels the part of the day a message is written for.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
	Night     TimeOfDay = "Night"
)

// TimeOfDayAt derives the label from the wall-clock hour. Computed fresh
// for every pipeline run, never cached.
func TimeOfDayAt(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h < 12:
		return Morning
	case h < 16:
		return Afternoon
	case h < 19:
		return Evening
	default:
		return Night
	}
}

// Fragment is one labeled block of context text contributed by a single
// source. It lives only for the duration of one pipeline run.
type Fragment struct {
	Label string
	Text  string
}

// Source is a context capability. Fetch returns the source's text block,
// an empty string when the source has nothing to contribute today, or an
// error when it is unavailable.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (string, error)
}

// FetchFunc adapts a plain function to the Source interface.
type FetchFunc func(ctx context.Context) (string, error)

type funcSource struct {
	name  string
	fetch FetchFunc
}

// NewSource wraps a fetch function as a named Source.
func NewSource(name string, fetch FetchFunc) Source {
	return &funcSource{name: name, fetch: fetch}
}

func (s *funcSource) Name() string { return s.name }

func (s *funcSource) Fetch(ctx context.Context) (string, error) {
	return s.fetch(ctx)
}
