package sources

import "strings"

// orgWatchlist maps lowercase aliases to the canonical entity name used in
// duplicate matching. Aliases let "Meta AI" and "Facebook AI" land on the
// same entity.
var orgWatchlist = map[string]string{
	"openai":       "OpenAI",
	"anthropic":    "Anthropic",
	"google":       "Google",
	"deepmind":     "DeepMind",
	"meta":         "Meta",
	"facebook":     "Meta",
	"microsoft":    "Microsoft",
	"nvidia":       "NVIDIA",
	"amazon":       "Amazon",
	"aws":          "Amazon",
	"apple":        "Apple",
	"mistral":      "Mistral",
	"cohere":       "Cohere",
	"hugging face": "Hugging Face",
	"huggingface":  "Hugging Face",
	"softbank":     "SoftBank",
	"tesla":        "Tesla",
	"xai":          "xAI",
	"intel":        "Intel",
	"amd":          "AMD",
	"tsmc":         "TSMC",
	"ibm":          "IBM",
	"oracle":       "Oracle",
	"salesforce":   "Salesforce",
	"baidu":        "Baidu",
	"alibaba":      "Alibaba",
	"tencent":      "Tencent",
	"deepseek":     "DeepSeek",
	"stability ai": "Stability AI",
	"perplexity":   "Perplexity",
}

// ExtractEntities scans a title for watchlist organizations and returns
// their canonical names, deduplicated, in order of first appearance.
func ExtractEntities(title string) []string {
	lower := strings.ToLower(title)

	var entities []string

	seen := make(map[string]bool)

	type hit struct {
		pos  int
		name string
	}

	var hits []hit

	for alias, canonical := range orgWatchlist {
		pos := indexWord(lower, alias)
		if pos < 0 || seen[canonical] {
			continue
		}

		seen[canonical] = true
		hits = append(hits, hit{pos: pos, name: canonical})
	}

	for len(hits) > 0 {
		best := 0
		for i := 1; i < len(hits); i++ {
			if hits[i].pos < hits[best].pos {
				best = i
			}
		}

		entities = append(entities, hits[best].name)
		hits = append(hits[:best], hits[best+1:]...)
	}

	return entities
}

// indexWord finds alias in s at a word boundary, so "meta" does not match
// inside "metadata".
func indexWord(s, alias string) int {
	offset := 0

	for {
		pos := strings.Index(s[offset:], alias)
		if pos < 0 {
			return -1
		}

		pos += offset

		before := pos == 0 || !isWordChar(s[pos-1])
		afterIdx := pos + len(alias)
		after := afterIdx >= len(s) || !isWordChar(s[afterIdx])

		if before && after {
			return pos
		}

		offset = pos + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
