package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	cerr "github.com/aipulse/pulse/internal/core/errors"
	"github.com/aipulse/pulse/internal/platform/config"
	"github.com/aipulse/pulse/internal/platform/observability"
)

const (
	llmAPIKeyMock = "mock"

	rateLimiterBurst        = 5
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute

	errRateLimiter          = "rate limiter wait: %w"
	errOpenAIChatCompletion = "openai chat completion: %w"

	operationGrouping = "grouping"
	operationScoring  = "scoring"
)

type openaiClient struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	return &openaiClient{
		cfg:         cfg,
		client:      openai.NewClient(cfg.LLMAPIKey),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPS)), rateLimiterBurst),
	}
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", cerr.ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (c *openaiClient) GroupTitles(ctx context.Context, titles []string) (GroupingResult, error) {
	content, err := c.complete(ctx, operationGrouping, groupingSystemPrompt, buildGroupingPrompt(titles))
	if err != nil {
		return GroupingResult{}, err
	}

	var result GroupingResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		return GroupingResult{}, fmt.Errorf("%w: %s", cerr.ErrMalformedGrouping, content)
	}

	return result, nil
}

func (c *openaiClient) ScoreEvent(ctx context.Context, title, summary string) (ScoreResult, error) {
	content, err := c.complete(ctx, operationScoring, scoringSystemPrompt, buildScoringPrompt(title, summary))
	if err != nil {
		return ScoreResult{}, err
	}

	var result ScoreResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		return ScoreResult{}, fmt.Errorf("parse scoring response: %w", err)
	}

	result.Sentiment = strings.ToLower(strings.TrimSpace(result.Sentiment))

	return result, nil
}

func (c *openaiClient) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.LLMModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})

	observability.LLMRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()

		return "", fmt.Errorf(errOpenAIChatCompletion, err)
	}

	c.recordSuccess()

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", cerr.ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug().Str("operation", operation).Str("content", content).Msg("LLM response")

	return content, nil
}
