package briefing

import (
	"fmt"
	"strings"
)

// Prompt is the two-role input to the completion service. System is the
// persona text, copied verbatim from configuration; User carries the
// opening instruction and the context fragments.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the user text: a fixed opening line parameterized by
// the time of day, then each fragment's text on its own line in the order
// the aggregator produced them. Missing sources leave no trace. Output is
// byte-identical for identical inputs.
func BuildPrompt(system string, tod TimeOfDay, fragments []Fragment) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write me a good %s message without using emojis or signing the message, given the following conditions for today:\n", tod)
	for _, f := range fragments {
		sb.WriteString(f.Text)
		sb.WriteByte('\n')
	}

	return Prompt{System: system, User: sb.String()}
}
