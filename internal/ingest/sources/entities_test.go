package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{
			name:  "single org",
			title: "OpenAI releases new reasoning model",
			want:  []string{"OpenAI"},
		},
		{
			name:  "aliases collapse",
			title: "Facebook AI and Meta announce joint lab",
			want:  []string{"Meta"},
		},
		{
			name:  "order of appearance",
			title: "NVIDIA supplies chips for Anthropic cluster",
			want:  []string{"NVIDIA", "Anthropic"},
		},
		{
			name:  "word boundary",
			title: "New metadata standard for model cards",
			want:  nil,
		},
		{
			name:  "case insensitive",
			title: "SOFTBANK eyes major openai investment",
			want:  []string{"SoftBank", "OpenAI"},
		},
		{
			name:  "no orgs",
			title: "Researchers publish survey of attention mechanisms",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.title))
		})
	}
}
