package verdict

import (
	"context"
	"fmt"

	"salesight/internal/llm"
)

// Temperature for the verdict call: the narrative is advisory prose, not a
// computed fact, so decoding is deliberately non-deterministic.
const temperature = 0.5

const system = "You are a senior sales consultant. Analyze the result and write a brief strategic verdict or conclusion. Be direct and add value. Do not explain the math. Three to four sentences at most."

// Generate produces the short strategic narrative for an already-computed
// result. Failures here are the caller's to isolate: a verdict error must
// never discard the computed result bundle.
func Generate(ctx context.Context, client llm.Client, question, headline, breakdown string) (string, error) {
	user := fmt.Sprintf("Question: %q\nPrimary result: %s\nBreakdown:\n%s", question, headline, breakdown)

	out, err := client.Complete(ctx, system, user, temperature)
	if err != nil {
		return "", fmt.Errorf("verdict generation failed: %w", err)
	}
	return out, nil
}
