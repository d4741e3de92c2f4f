package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CollectionChecker reports which configured collections have an index.
type CollectionChecker interface {
	Existing(ctx context.Context) (map[string]bool, error)
}
