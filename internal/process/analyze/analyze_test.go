package analyze

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/core/llm"
)

type fakeRepo struct {
	events []domain.Event
	saved  map[string]llm.ScoreResult
}

func (f *fakeRepo) ListUnscoredCanonical(_ context.Context, limit int) ([]domain.Event, error) {
	if len(f.events) > limit {
		return f.events[:limit], nil
	}

	return f.events, nil
}

func (f *fakeRepo) SaveAnalysis(_ context.Context, eventID string, score float32, sentiment, analysis string) error {
	if f.saved == nil {
		f.saved = make(map[string]llm.ScoreResult)
	}

	f.saved[eventID] = llm.ScoreResult{Significance: score, Sentiment: sentiment, Analysis: analysis}

	return nil
}

type stubScorer struct {
	results map[string]llm.ScoreResult
	errFor  map[string]error
}

func (s *stubScorer) ScoreEvent(_ context.Context, title, _ string) (llm.ScoreResult, error) {
	if err, ok := s.errFor[title]; ok {
		return llm.ScoreResult{}, err
	}

	return s.results[title], nil
}

func TestRunScoresBatch(t *testing.T) {
	repo := &fakeRepo{
		events: []domain.Event{
			{ID: "e1", Title: "OpenAI funding round"},
			{ID: "e2", Title: "Chip export restrictions"},
		},
	}
	scorer := &stubScorer{
		results: map[string]llm.ScoreResult{
			"OpenAI funding round":     {Significance: 8.5, Sentiment: "positive", Analysis: "major capital inflow"},
			"Chip export restrictions": {Significance: 7, Sentiment: "negative", Analysis: "supply risk"},
		},
	}

	logger := zerolog.Nop()

	scored, err := New(repo, scorer, 25, &logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, scored)
	assert.Equal(t, float32(8.5), repo.saved["e1"].Significance)
	assert.Equal(t, "negative", repo.saved["e2"].Sentiment)
}

func TestRunSkipsFailedEvent(t *testing.T) {
	repo := &fakeRepo{
		events: []domain.Event{
			{ID: "e1", Title: "good"},
			{ID: "e2", Title: "bad"},
			{ID: "e3", Title: "also good"},
		},
	}
	scorer := &stubScorer{
		results: map[string]llm.ScoreResult{
			"good":      {Significance: 5, Sentiment: "neutral"},
			"also good": {Significance: 6, Sentiment: "mixed"},
		},
		errFor: map[string]error{"bad": errors.New("model unavailable")},
	}

	logger := zerolog.Nop()

	scored, err := New(repo, scorer, 25, &logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, scored)
	assert.NotContains(t, repo.saved, "e2")
}

func TestRunNormalizesModelOutput(t *testing.T) {
	repo := &fakeRepo{
		events: []domain.Event{{ID: "e1", Title: "odd output"}},
	}
	scorer := &stubScorer{
		results: map[string]llm.ScoreResult{
			"odd output": {Significance: 14, Sentiment: "very bullish"},
		},
	}

	logger := zerolog.Nop()

	_, err := New(repo, scorer, 25, &logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float32(10), repo.saved["e1"].Significance)
	assert.Equal(t, domain.SentimentNeutral, repo.saved["e1"].Sentiment)
}

func TestTopEventsSummary(t *testing.T) {
	score := func(v float32) *float32 { return &v }

	events := []domain.Event{
		{Title: "minor item", Sentiment: "neutral", SignificanceScore: score(3)},
		{Title: "unscored item"},
		{Title: "major item", Sentiment: "positive", SignificanceScore: score(9)},
		{Title: "middling item", Sentiment: "negative", SignificanceScore: score(6)},
	}

	summary := TopEventsSummary(events, 2)

	assert.Equal(t, "[9.0/positive] major item\n[6.0/negative] middling item", summary)
}

func TestTopEventsSummaryEmpty(t *testing.T) {
	assert.Empty(t, TopEventsSummary(nil, 5))
}
