package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/quizsmith/internal/logger"
)

// RetryProvider repeats transient failures with capped exponential backoff
// and ±20% jitter. A rate limit that names its own wait is honoured as is.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    *logger.Logger
}

// RetryOption configures a RetryProvider.
type RetryOption func(*RetryProvider)

// RetryLogTo reports each retry at warn level.
func RetryLogTo(log *logger.Logger) RetryOption {
	return func(r *RetryProvider) { r.log = log }
}

// WithRetry wraps p. A MaxAttempts below 1 means a single attempt.
func WithRetry(p Provider, cfg RetryConfig, opts ...RetryOption) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	r := &RetryProvider{inner: p, config: cfg}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.OrNop(r.log)
	return r
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		lastErr        error
		invalidRetried bool
	)
	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !r.shouldRetry(err, &invalidRetried) || attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		r.log.Warn("retrying LLM request",
			"purpose", PurposeFrom(ctx),
			"request_id", RequestIDFrom(ctx),
			"attempt", attempt+1,
			"max_attempts", r.config.MaxAttempts,
			"wait", wait,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

// shouldRetry allows every transient error, but an invalid reply only once.
func (r *RetryProvider) shouldRetry(err error, invalidRetried *bool) bool {
	if !IsTransient(err) {
		return false
	}
	if IsInvalidResponse(err) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}

func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	if after := RetryAfter(err); after > 0 {
		return after
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}
