// Package sources implements the external-source connectors that feed the
// pulse engine: Hacker News, configured RSS feeds, and arXiv listings.
package sources

import (
	"context"

	"github.com/aipulse/pulse/internal/core/domain"
)

// Connector fetches one source's current items as domain events. A
// connector never writes to storage; identity filtering happens at the
// persistence layer.
type Connector interface {
	Name() domain.Source
	Collect(ctx context.Context) ([]domain.Event, error)
}
