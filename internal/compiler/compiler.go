package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"salesight/internal/config"
	"salesight/internal/dataset"
	"salesight/internal/executor"
	"salesight/internal/llm"
)

// Compiler turns a schema descriptor plus a free-text question into an
// executable query program. Generation is pinned to temperature 0 so the
// same question over the same schema compiles to the same program.
type Compiler struct {
	llm   llm.Client
	rules config.Rules
}

// New builds a Compiler.
func New(client llm.Client, rules config.Rules) *Compiler {
	return &Compiler{llm: client, rules: rules}
}

// Compile produces the program and its literal text. The text is returned
// even when parsing fails, so a malformed generation stays inspectable.
func (c *Compiler) Compile(ctx context.Context, schema dataset.Schema, question string) (*executor.Program, string, error) {
	raw, err := c.llm.Complete(ctx, BuildPrompt(schema, c.rules), question, 0)
	if err != nil {
		return nil, "", fmt.Errorf("program generation failed: %w", err)
	}

	text := StripFences(raw)
	if text == "" {
		return nil, text, fmt.Errorf("model returned an empty program")
	}

	var prog executor.Program
	if err := json.Unmarshal([]byte(text), &prog); err != nil {
		return nil, text, fmt.Errorf("malformed program: %w", err)
	}

	return &prog, text, nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json|python)?\\s*(.*?)```")

// StripFences removes a wrapping markdown code fence from model output,
// returning the raw text unchanged when no fence is present. Stripping is
// idempotent: unfenced program text passes through as-is.
func StripFences(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}
