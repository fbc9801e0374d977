package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain object",
			content: `{"duplicate_groups": []}`,
			want:    `{"duplicate_groups": []}`,
		},
		{
			name:    "fenced json block",
			content: "```json\n{\"duplicate_groups\": [[0, 1]]}\n```",
			want:    `{"duplicate_groups": [[0, 1]]}`,
		},
		{
			name:    "bare fence",
			content: "```\n{\"sentiment\": \"positive\"}\n```",
			want:    `{"sentiment": "positive"}`,
		},
		{
			name:    "prose around object",
			content: "Here is the result: {\"reasoning\": \"none\"} hope that helps",
			want:    `{"reasoning": "none"}`,
		},
		{
			name:    "no object at all",
			content: "no duplicates found",
			want:    "no duplicates found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.content))
		})
	}
}
