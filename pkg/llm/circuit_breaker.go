package llm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
)

// ErrCircuitOpen is returned by Breaker.Allow while the model is being
// skipped after repeated failures. It matches apperrors.ErrLLMUnavailable.
var ErrCircuitOpen = fmt.Errorf("model circuit open: %w", apperrors.ErrLLMUnavailable)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// BreakerClosed lets every call through.
	BreakerClosed BreakerState = iota
	// BreakerOpen skips calls until the cooldown has passed.
	BreakerOpen
	// BreakerHalfOpen lets a single trial call through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds the trip threshold and the cooldown before a trial
// call is let through.
type BreakerConfig struct {
	Threshold int
	Cooldown  time.Duration
}

// DefaultBreakerConfig trips after 5 consecutive failures and retries
// after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Threshold: 5, Cooldown: 30 * time.Second}
}

// Breaker stops calling the model after consecutive failures, so an
// unreachable endpoint does not hold up every chat answer.
type Breaker struct {
	mu          sync.Mutex
	threshold   int
	cooldown    time.Duration
	failures    int
	lastFailure time.Time
	state       BreakerState
	now         func() time.Time
}

// NewBreaker creates a closed breaker. Non-positive settings fall back to
// DefaultBreakerConfig.
func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &Breaker{
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may go ahead. An open breaker whose cooldown
// has passed moves to half-open and admits exactly one trial call.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		since := b.now().Sub(b.lastFailure)
		if since < b.cooldown {
			return fmt.Errorf("%w (failed %d times, last failure %v ago)",
				ErrCircuitOpen, b.failures, since.Round(time.Second))
		}
		b.state = BreakerHalfOpen
		return nil
	case BreakerHalfOpen:
		return fmt.Errorf("%w (trial call in flight)", ErrCircuitOpen)
	default:
		return nil
	}
}

// RecordSuccess closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = BreakerClosed
}

// RecordFailure counts a failed call. A failed trial call reopens the
// breaker immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		b.state = BreakerOpen
	}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// IsCircuitOpen reports whether err came from an open breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
