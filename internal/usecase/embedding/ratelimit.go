package embedding

import "golang.org/x/time/rate"

// NewLimiter builds a token bucket for requestsPerSecond with the given burst.
// Returns a nil Limiter (no throttling) when requestsPerSecond <= 0.
func NewLimiter(requestsPerSecond float64, burst int) Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
