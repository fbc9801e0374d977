package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aipulse/pulse/internal/core/domain"
)

func TestURLCollapser(t *testing.T) {
	events := []domain.Event{
		{Title: "first", SourceURL: "https://example.com/story"},
		{Title: "trailing slash", SourceURL: "https://example.com/story/"},
		{Title: "http scheme", SourceURL: "http://example.com/story"},
		{Title: "fragment", SourceURL: "https://example.com/story#comments"},
		{Title: "different page", SourceURL: "https://example.com/other"},
	}

	kept, dropped := NewURLCollapser().Collapse(events)

	assert.Equal(t, 3, dropped)

	titles := make([]string, 0, len(kept))
	for _, ev := range kept {
		titles = append(titles, ev.Title)
	}

	assert.Equal(t, []string{"first", "different page"}, titles)
}

func TestURLCollapserKeepsEarliest(t *testing.T) {
	events := []domain.Event{
		{Title: "earliest", SourceURL: "https://example.com/a"},
		{Title: "repeat", SourceURL: "https://example.com/a"},
	}

	kept, dropped := NewURLCollapser().Collapse(events)

	assert.Equal(t, 1, dropped)
	assert.Len(t, kept, 1)
	assert.Equal(t, "earliest", kept[0].Title)
}

func TestURLCollapserAcrossBatches(t *testing.T) {
	collapser := NewURLCollapser()

	first, dropped := collapser.Collapse([]domain.Event{
		{Title: "cs.AI listing", SourceURL: "https://arxiv.org/abs/2501.01234"},
	})
	assert.Len(t, first, 1)
	assert.Equal(t, 0, dropped)

	second, dropped := collapser.Collapse([]domain.Event{
		{Title: "cs.LG cross-listing", SourceURL: "https://arxiv.org/abs/2501.01234"},
	})
	assert.Empty(t, second)
	assert.Equal(t, 1, dropped)
}
