package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/platform/clock"
)

const (
	hnBaseURL        = "https://hacker-news.firebaseio.com/v0"
	hnRequestTimeout = 10 * time.Second
)

// aiKeywords gates Hacker News items; the firehose is mostly off-topic and
// only AI-industry stories belong in the pulse.
// Short keywords match on word boundaries so "ai" does not fire inside
// "aircraft"; longer phrases match as substrings.
var (
	aiWordKeywords = []string{"ai", "llm", "gpt", "agi"}
	aiKeywords     = []string{
		"machine learning", "deep learning", "neural",
		"openai", "anthropic", "deepmind", "transformer", "chatbot",
		"copilot", "diffusion", "foundation model", "inference", "fine-tun",
	}
)

type hnItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
	Dead  bool   `json:"dead"`
}

// HackerNews collects AI-relevant stories from the Hacker News API. The
// story id is the stable native identity.
type HackerNews struct {
	baseURL    string
	fetchLimit int
	httpClient *http.Client
	clock      clock.Clock
	logger     *zerolog.Logger
}

func NewHackerNews(fetchLimit int, clk clock.Clock, logger *zerolog.Logger) *HackerNews {
	return &HackerNews{
		baseURL:    hnBaseURL,
		fetchLimit: fetchLimit,
		httpClient: &http.Client{Timeout: hnRequestTimeout},
		clock:      clk,
		logger:     logger,
	}
}

func (h *HackerNews) Name() domain.Source {
	return domain.SourceHackerNews
}

func (h *HackerNews) Collect(ctx context.Context) ([]domain.Event, error) {
	ids, err := h.fetchTopStoryIDs(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > h.fetchLimit {
		ids = ids[:h.fetchLimit]
	}

	var events []domain.Event

	for _, id := range ids {
		item, err := h.fetchItem(ctx, id)
		if err != nil {
			h.logger.Warn().Err(err).Int("item_id", id).Msg("Skipping Hacker News item")
			continue
		}

		if item.Type != "story" || item.Dead || item.Title == "" || item.URL == "" {
			continue
		}

		if !isAIRelevant(item.Title) {
			continue
		}

		events = append(events, domain.Event{
			Source:         domain.SourceHackerNews,
			SourceNativeID: strconv.Itoa(item.ID),
			SourceURL:      item.URL,
			Title:          strings.TrimSpace(item.Title),
			Entities:       ExtractEntities(item.Title),
			PublishedAt:    time.Unix(item.Time, 0).UTC(),
			CollectedAt:    h.clock.Now().UTC(),
		})
	}

	return events, nil
}

func (h *HackerNews) fetchTopStoryIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := h.getJSON(ctx, h.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}

	return ids, nil
}

func (h *HackerNews) fetchItem(ctx context.Context, id int) (hnItem, error) {
	var item hnItem
	if err := h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.baseURL, id), &item); err != nil {
		return hnItem{}, fmt.Errorf("fetch item %d: %w", id, err)
	}

	return item, nil
}

func (h *HackerNews) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func isAIRelevant(title string) bool {
	lower := strings.ToLower(title)

	for _, kw := range aiWordKeywords {
		if indexWord(lower, kw) >= 0 {
			return true
		}
	}

	for _, kw := range aiKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}
