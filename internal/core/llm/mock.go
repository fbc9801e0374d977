package llm

import "context"

// mockClient returns fixed responses, used when no API key is configured
// and in tests.
type mockClient struct{}

func NewMock() Client {
	return &mockClient{}
}

func (m *mockClient) GroupTitles(_ context.Context, _ []string) (GroupingResult, error) {
	return GroupingResult{Reasoning: "mock client, no grouping performed"}, nil
}

func (m *mockClient) ScoreEvent(_ context.Context, _, _ string) (ScoreResult, error) {
	return ScoreResult{
		Significance: 5,
		Sentiment:    "neutral",
		Analysis:     "mock analysis",
	}, nil
}
