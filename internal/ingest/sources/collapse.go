package sources

import (
	"net/url"
	"strings"

	"github.com/aipulse/pulse/internal/core/domain"
)

// URLCollapser drops later events in a batch that point at a URL already
// seen earlier in the same batch. It is per-run state; cross-run identity
// is handled by the native-id index and the matching layers.
type URLCollapser struct {
	seen map[string]bool
}

func NewURLCollapser() *URLCollapser {
	return &URLCollapser{seen: make(map[string]bool)}
}

// Collapse returns the batch with same-URL repeats removed, preserving
// order, plus the number of events dropped.
func (c *URLCollapser) Collapse(events []domain.Event) ([]domain.Event, int) {
	kept := events[:0]
	dropped := 0

	for _, ev := range events {
		key := normalizeURL(ev.SourceURL)
		if key != "" && c.seen[key] {
			dropped++
			continue
		}

		if key != "" {
			c.seen[key] = true
		}

		kept = append(kept, ev)
	}

	return kept, dropped
}

// normalizeURL lowercases the host, strips the scheme difference between
// http and https, and removes trailing slashes and fragments so trivially
// different links to the same page collapse.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" {
		u.Scheme = "https"
	}

	u.Path = strings.TrimRight(u.Path, "/")

	return u.String()
}
