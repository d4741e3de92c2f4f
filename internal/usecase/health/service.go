package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure: search may return fewer results.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates a configured collection without an index.
	CheckMissing CheckResult = "missing"
)

// Check names.
const (
	CheckDatabase  = "database"
	CheckEmbedding = "embedding"
)

// Report aggregates health check results. Collections are keyed by name.
type Report struct {
	Status      Status                 `json:"status"`
	Checks      map[string]CheckResult `json:"checks"`
	Collections map[string]CheckResult `json:"collections,omitempty"`
}

// Service coordinates health checks.
type Service struct {
	db          DBPinger
	embedding   EmbeddingChecker
	collections CollectionChecker
	timeout     time.Duration
}

// New creates a Service. embedding and collections can be nil.
// A positive timeout bounds each individual check.
func New(db DBPinger, embedding EmbeddingChecker, collections CollectionChecker, timeout time.Duration) *Service {
	return &Service{db: db, embedding: embedding, collections: collections, timeout: timeout}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	r.Checks[CheckDatabase] = result(s.probe(ctx, s.db.Ping))
	if r.Checks[CheckDatabase] == CheckError {
		r.Status = Unhealthy
		return r
	}

	if s.embedding != nil {
		r.Checks[CheckEmbedding] = result(s.probe(ctx, s.embedding.HealthCheck))
		if r.Checks[CheckEmbedding] == CheckError {
			r.Status = Degraded
		}
	}

	if s.collections != nil {
		r.Collections = s.checkCollections(ctx)
		for _, v := range r.Collections {
			if v != CheckOK {
				r.Status = Degraded
			}
		}
	}

	return r
}

func (s *Service) checkCollections(ctx context.Context) map[string]CheckResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	existing, err := s.collections.Existing(ctx)
	if err != nil {
		return map[string]CheckResult{"*": CheckError}
	}
	out := make(map[string]CheckResult, len(existing))
	for name, ok := range existing {
		out[name] = CheckOK
		if !ok {
			out[name] = CheckMissing
		}
	}
	return out
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return fn(ctx)
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
