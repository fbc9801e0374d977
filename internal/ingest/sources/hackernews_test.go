package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/platform/clock"
)

func TestHackerNewsCollect(t *testing.T) {
	items := map[string]string{
		"/topstories.json": `[1, 2, 3, 4]`,
		"/item/1.json":     `{"id": 1, "type": "story", "title": "OpenAI launches GPT-5", "url": "https://example.com/gpt5", "time": 1750000000}`,
		"/item/2.json":     `{"id": 2, "type": "story", "title": "Show HN: My static site generator", "url": "https://example.com/ssg", "time": 1750000100}`,
		"/item/3.json":     `{"id": 3, "type": "comment", "title": "AI thread", "url": "https://example.com/c", "time": 1750000200}`,
		"/item/4.json":     `{"id": 4, "type": "story", "title": "New LLM inference runtime", "url": "https://example.com/runtime", "time": 1750000300}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := items[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = fmt.Fprint(w, body)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	hn := NewHackerNews(10, clock.NewFixed(now), &logger)
	hn.baseURL = srv.URL

	events, err := hn.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 2)

	assert.Equal(t, domain.SourceHackerNews, events[0].Source)
	assert.Equal(t, "1", events[0].SourceNativeID)
	assert.Equal(t, "OpenAI launches GPT-5", events[0].Title)
	assert.Equal(t, []string{"OpenAI"}, events[0].Entities)
	assert.Equal(t, now, events[0].CollectedAt)

	assert.Equal(t, "4", events[1].SourceNativeID)
}

func TestHackerNewsFetchLimit(t *testing.T) {
	var itemRequests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			_, _ = fmt.Fprint(w, `[1, 2, 3, 4, 5]`)
			return
		}

		itemRequests++

		_, _ = fmt.Fprint(w, `{"id": 1, "type": "story", "title": "AI news", "url": "https://example.com/x", "time": 1750000000}`)
	}))
	defer srv.Close()

	logger := zerolog.Nop()

	hn := NewHackerNews(2, clock.System(), &logger)
	hn.baseURL = srv.URL

	_, err := hn.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, itemRequests)
}

func TestIsAIRelevant(t *testing.T) {
	assert.True(t, isAIRelevant("New AI benchmark released"))
	assert.True(t, isAIRelevant("Fine-tuning on consumer hardware"))
	assert.True(t, isAIRelevant("Anthropic publishes interpretability research"))
	assert.False(t, isAIRelevant("Aircraft maintenance logs as a service"))
	assert.False(t, isAIRelevant("Rust compiler internals explained"))
}
