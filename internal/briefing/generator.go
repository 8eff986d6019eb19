package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daybreak-home/daybreak/internal/llm"
	"github.com/daybreak-home/daybreak/internal/store"
)

// Generator runs the full pipeline: collect fragments, build the prompt,
// call the completion service.
type Generator struct {
	aggregator *Aggregator
	client     llm.Client
	system     string
	logger     *slog.Logger

	now func() time.Time
}

// NewGenerator creates a pipeline generator. system is the persona text
// used as the completion's system role.
func NewGenerator(aggregator *Aggregator, client llm.Client, system string, logger *slog.Logger) *Generator {
	return &Generator{
		aggregator: aggregator,
		client:     client,
		system:     system,
		logger:     logger,
		now:        time.Now,
	}
}

// Generate produces one message. Source failures have already been
// absorbed by the aggregator; a completion failure is returned to the
// caller as-is, with no retry.
func (g *Generator) Generate(ctx context.Context) (store.Message, error) {
	logger := g.logger.With("run_id", uuid.NewString())

	tod, fragments := g.aggregator.Collect(ctx)
	prompt := BuildPrompt(g.system, tod, fragments)

	logger.Info("prompt assembled", "time_of_day", tod, "fragments", len(fragments))
	logger.Debug("prompt text", "user", prompt.User)

	text, err := g.client.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		return store.Message{}, fmt.Errorf("generate message: %w", err)
	}

	logger.Info("message generated", "length", len(text))
	return store.Message{Text: text, GeneratedAt: g.now()}, nil
}
