package resilience

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Config holds the tunables for one named policy pair: the circuit breaker
// thresholds plus the time-limiter budget applied to every guarded call.
type Config struct {
	FailureRateThreshold float64       // fraction of failed calls that trips the breaker
	SlidingWindowSize    uint32        // minimum calls observed before the rate applies
	OpenStateWait        time.Duration // how long the breaker stays OPEN before trials
	HalfOpenCalls        uint32        // trial calls allowed while HALF_OPEN
	CallTimeout          time.Duration // per-call time budget
}

// Policy couples a named circuit breaker with a call timeout. One Policy
// guards a family of operations; failures and timeouts from all of them
// feed the same breaker.
type Policy struct {
	name    string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[any]
	log     zerolog.Logger
}

// NewPolicy builds a Policy from config. Calls exceeding CallTimeout count
// as breaker failures, which also covers the slow-call case: a call slower
// than its budget is a failed call.
func NewPolicy(name string, cfg Config, log zerolog.Logger) *Policy {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenCalls,
		Timeout:     cfg.OpenStateWait,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.SlidingWindowSize {
				return false
			}
			rate := float64(counts.TotalFailures) / float64(counts.Requests)
			return rate >= cfg.FailureRateThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("policy", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Policy{
		name:    name,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		log:     log,
	}
}

// Name returns the policy name.
func (p *Policy) Name() string {
	return p.name
}

// State exposes the breaker state (CLOSED, OPEN, HALF_OPEN).
func (p *Policy) State() gobreaker.State {
	return p.breaker.State()
}

// Execute runs op under the policy's breaker and time budget. While the
// breaker is OPEN the op is never invoked. On timeout, open-circuit
// short-circuit, or any error from op, fallback is invoked with the
// triggering failure and its result is returned to the caller instead.
//
// The op receives a context bounded by the policy timeout; when the budget
// is exceeded the in-flight call is cancelled through that context and the
// caller is released immediately.
func Execute[T any](ctx context.Context, p *Policy, op func(context.Context) (T, error), fallback func(context.Context, error) (T, error)) (T, error) {
	v, err := p.breaker.Execute(func() (any, error) {
		opCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		type result struct {
			val T
			err error
		}
		done := make(chan result, 1)
		go func() {
			val, err := op(opCtx)
			done <- result{val: val, err: err}
		}()

		select {
		case r := <-done:
			if r.err != nil {
				return nil, r.err
			}
			return r.val, nil
		case <-opCtx.Done():
			return nil, opCtx.Err()
		}
	})
	if err != nil {
		p.log.Debug().
			Err(err).
			Str("policy", p.name).
			Msg("guarded call failed, dispatching fallback")
		return fallback(ctx, err)
	}

	t, _ := v.(T)
	return t, nil
}
