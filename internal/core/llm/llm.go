// Package llm provides the language-model client used for semantic title
// grouping and event scoring.
package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/platform/config"
)

// GroupingResult is the semantic grouper's response contract. Each inner
// slice holds zero-based indices into the submitted title list; the first
// index of a group is its canonical member.
type GroupingResult struct {
	DuplicateGroups [][]int `json:"duplicate_groups"`
	Reasoning       string  `json:"reasoning"`
}

// ScoreResult is the analyzer's verdict for a single event.
type ScoreResult struct {
	Significance float32 `json:"significance_score"`
	Sentiment    string  `json:"sentiment"`
	Analysis     string  `json:"analysis"`
}

// Client is the language-model surface the pipeline depends on.
type Client interface {
	// GroupTitles asks the model which of the given titles describe the
	// same underlying story. Indices reference positions in titles.
	GroupTitles(ctx context.Context, titles []string) (GroupingResult, error)
	// ScoreEvent rates one event's market significance and sentiment.
	ScoreEvent(ctx context.Context, title, summary string) (ScoreResult, error)
}

// New returns the OpenAI-backed client, or the mock when no API key is
// configured.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == llmAPIKeyMock {
		return NewMock()
	}

	return NewOpenAI(cfg, logger)
}
