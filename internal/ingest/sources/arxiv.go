package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/platform/clock"
)

const (
	arxivQueryURL   = "https://export.arxiv.org/api/query?search_query=cat:%s&sortBy=submittedDate&sortOrder=descending&max_results=%d"
	arxivMaxResults = 25
)

// Arxiv collects recent preprints per category via the arXiv Atom API.
// Listings carry no stable native id we trust across mirrors, so these
// events skip the identity layer and rely on same-batch URL collapse plus
// the matching layers.
type Arxiv struct {
	queryURL   string
	categories []string
	parser     *gofeed.Parser
	clock      clock.Clock
	logger     *zerolog.Logger
}

func NewArxiv(categories []string, clk clock.Clock, logger *zerolog.Logger) *Arxiv {
	return &Arxiv{
		queryURL:   arxivQueryURL,
		categories: categories,
		parser:     gofeed.NewParser(),
		clock:      clk,
		logger:     logger,
	}
}

func (a *Arxiv) Name() domain.Source {
	return domain.SourceArxiv
}

func (a *Arxiv) Collect(ctx context.Context) ([]domain.Event, error) {
	collapser := NewURLCollapser()

	var events []domain.Event

	for _, category := range a.categories {
		url := fmt.Sprintf(a.queryURL, category, arxivMaxResults)

		feed, err := a.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			a.logger.Warn().Err(err).Str("category", category).Msg("Skipping arXiv category")
			continue
		}

		batch := make([]domain.Event, 0, len(feed.Items))

		for _, item := range feed.Items {
			title := strings.TrimSpace(strings.ReplaceAll(item.Title, "\n", " "))
			if title == "" || item.Link == "" {
				continue
			}

			batch = append(batch, domain.Event{
				Source:      domain.SourceArxiv,
				SourceURL:   item.Link,
				Title:       title,
				Summary:     strings.TrimSpace(item.Description),
				Entities:    ExtractEntities(title),
				PublishedAt: itemPublished(item),
				CollectedAt: a.clock.Now().UTC(),
			})
		}

		// Cross-listed papers appear once per category; collapse on the
		// abstract URL.
		collapsed, dropped := collapser.Collapse(batch)
		if dropped > 0 {
			a.logger.Debug().Str("category", category).Int("dropped", dropped).Msg("Collapsed cross-listed preprints")
		}

		events = append(events, collapsed...)
	}

	return events, nil
}
