package sources

import (
	"context"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/platform/clock"
)

// Feeds collects items from a curated list of tech RSS/Atom feeds. The item
// GUID, when the feed supplies one, is the native identity.
type Feeds struct {
	urls   []string
	parser *gofeed.Parser
	clock  clock.Clock
	logger *zerolog.Logger
}

func NewFeeds(urls []string, clk clock.Clock, logger *zerolog.Logger) *Feeds {
	return &Feeds{
		urls:   urls,
		parser: gofeed.NewParser(),
		clock:  clk,
		logger: logger,
	}
}

func (f *Feeds) Name() domain.Source {
	return domain.SourceTechRSS
}

func (f *Feeds) Collect(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event

	for _, url := range f.urls {
		feed, err := f.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			f.logger.Warn().Err(err).Str("feed_url", url).Msg("Skipping unreachable feed")
			continue
		}

		for _, item := range feed.Items {
			ev, ok := f.itemToEvent(item)
			if !ok {
				continue
			}

			events = append(events, ev)
		}
	}

	return events, nil
}

func (f *Feeds) itemToEvent(item *gofeed.Item) (domain.Event, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" || item.Link == "" {
		return domain.Event{}, false
	}

	return domain.Event{
		Source:         domain.SourceTechRSS,
		SourceNativeID: strings.TrimSpace(item.GUID),
		SourceURL:      item.Link,
		Title:          title,
		Summary:        strings.TrimSpace(item.Description),
		Entities:       ExtractEntities(title),
		PublishedAt:    itemPublished(item),
		CollectedAt:    f.clock.Now().UTC(),
	}, true
}

// itemPublished prefers the parsed timestamp, falls back to lenient parsing
// of the raw field, and leaves the zero value when the feed gives nothing.
func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}

	if item.Published != "" {
		if t, err := dateparse.ParseAny(item.Published); err == nil {
			return t.UTC()
		}
	}

	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}

	return time.Time{}
}
