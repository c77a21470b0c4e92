package analysis

import (
	"context"
	"log/slog"

	"salesight/internal/compiler"
	"salesight/internal/config"
	"salesight/internal/dataset"
	"salesight/internal/executor"
	"salesight/internal/format"
	"salesight/internal/llm"
	"salesight/internal/models"
	"salesight/internal/verdict"
)

// ErrorHeadline replaces the headline figure when a computation fails.
const ErrorHeadline = "Calculation error"

// Service orchestrates one analysis cycle: compile the question into a
// program, execute it against a private copy of the dataset, format the
// result, then generate the advisory verdict.
type Service struct {
	llm      llm.Client
	compiler *compiler.Compiler
	rules    config.Rules
}

// NewService wires the pipeline.
func NewService(client llm.Client, rules config.Rules) *Service {
	return &Service{
		llm:      client,
		compiler: compiler.New(client, rules),
		rules:    rules,
	}
}

// Analyze runs the full pipeline for one question. Compilation and
// execution faults are caught here and reported as a calculation-error
// response that preserves the generated program text for inspection; they
// never crash the session. A verdict failure is strictly additive: the
// computed bundle stays valid and only VerdictError is set.
func (s *Service) Analyze(ctx context.Context, ds *dataset.Dataset, question string) *models.AnalyzeResponse {
	prog, text, err := s.compiler.Compile(ctx, ds.Schema(), question)
	if err != nil {
		slog.Warn("program compilation failed", "question", question, "error", err)
		return errorResponse(question, text, err)
	}

	result, err := executor.Run(prog, ds, s.rules)
	if err != nil {
		slog.Warn("program execution failed", "question", question, "error", err)
		return errorResponse(question, text, err)
	}

	resp := &models.AnalyzeResponse{
		Question:  question,
		Headline:  format.Headline(result.Primary),
		Breakdown: result.Breakdown,
		Table:     result.Table,
		Program:   text,
	}

	v, err := verdict.Generate(ctx, s.llm, question, resp.Headline, resp.Breakdown)
	if err != nil {
		slog.Warn("verdict generation failed", "question", question, "error", err)
		resp.VerdictError = err.Error()
		return resp
	}
	resp.Verdict = v

	return resp
}

func errorResponse(question, program string, err error) *models.AnalyzeResponse {
	return &models.AnalyzeResponse{
		Question:    question,
		Headline:    ErrorHeadline,
		Error:       models.ErrCalculation,
		ErrorDetail: err.Error(),
		Program:     program,
	}
}
