package llm

import (
	"fmt"
	"strings"
)

const groupingSystemPrompt = `You are a news deduplication assistant for AI industry news.
Given a numbered list of headlines from the same day, identify groups of
headlines that describe the SAME underlying story or announcement, even when
the wording differs completely.

Two headlines belong to the same group only when they report the same event
(same actors, same action). Headlines about the same company but different
events are NOT duplicates.

Respond with JSON only:
{"duplicate_groups": [[0, 3], [1, 4, 7]], "reasoning": "short explanation"}

Each inner array lists the zero-based indices of one group, earliest index
first. Headlines with no duplicate are omitted. If there are no duplicates,
return {"duplicate_groups": [], "reasoning": "..."}.`

const scoringSystemPrompt = `You are a financial analyst covering the AI industry.
Rate the market significance of a news event on a 0-10 scale and classify its
sentiment for AI-exposed equities as one of: positive, negative, neutral, mixed.

Respond with JSON only:
{"significance_score": 7.5, "sentiment": "positive", "analysis": "one or two sentences"}`

func buildGroupingPrompt(titles []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Here are %d headlines from the same day:\n\n", len(titles)))

	for i, title := range titles {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i, title))
	}

	return sb.String()
}

func buildScoringPrompt(title, summary string) string {
	var sb strings.Builder

	sb.WriteString("Headline: " + title + "\n")

	if summary != "" {
		sb.WriteString("Summary: " + summary + "\n")
	}

	return sb.String()
}
