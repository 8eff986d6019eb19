// Package llm provides the completion-service client used to turn an
// assembled briefing prompt into the final message.
package llm

import "context"

// Client is the interface the briefing pipeline generates text through.
type Client interface {
	// Complete submits a single-turn, two-role chat completion and
	// returns the text of the first choice.
	Complete(ctx context.Context, system, user string) (string, error)
}
