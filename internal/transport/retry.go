package transport

import (
	"time"

	"go.uber.org/zap"

	"github.com/muurk/docon/internal/fault"
	"github.com/muurk/docon/internal/logging"
)

const (
	// DefaultMaxAttempts is the total number of tries, the first one included
	DefaultMaxAttempts = 3

	// DefaultBackoff is the fixed pause before each reconnect
	DefaultBackoff = 200 * time.Millisecond
)

// Connector is the part of a Session the executor drives.
type Connector interface {
	EnsureConnected() error
	Reconnect() error
}

// Outcome is the result of one Run.
type Outcome struct {
	// Attempts is how many times op was tried (or a connect was tried for it)
	Attempts int
	// Reconnects counts Reconnect calls, failed ones included
	Reconnects int
	// Exhausted is set when every attempt failed with a retryable fault
	Exhausted bool
	// Err is the last fault, nil on success
	Err error
}

// OK reports whether the operation eventually succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Executor runs operations against a connection with bounded
// reconnect-and-retry. Only connection and transport faults are retried;
// every other error is returned on the spot.
type Executor struct {
	conn Connector

	// MaxAttempts is the ceiling of total attempts
	MaxAttempts int

	// Backoff is slept between a failed attempt and the reconnect
	Backoff time.Duration

	// Sleep is used for the backoff
	Sleep func(time.Duration)
}

// NewExecutor creates an executor with the default policy.
func NewExecutor(conn Connector) *Executor {
	return &Executor{
		conn:        conn,
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
		Sleep:       time.Sleep,
	}
}

// Execute runs op and returns its final error.
func (e *Executor) Execute(op func() error) error {
	return e.Run(op).Err
}

// Run runs op until it succeeds, fails with a non-retryable fault or the
// attempts are used up. Each attempt first makes sure the connection is up.
func (e *Executor) Run(op func() error) Outcome {
	maxAttempts := e.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var out Outcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out.Attempts = attempt

		err := e.conn.EnsureConnected()
		if err == nil {
			err = op()
		}
		if err == nil {
			out.Err = nil
			return out
		}
		out.Err = err

		// Don't retry non-retryable errors
		if !fault.IsRetryable(err) {
			return out
		}

		if attempt == maxAttempts {
			break
		}

		logging.LogRetry(attempt, maxAttempts, err)
		if e.Backoff > 0 {
			e.Sleep(e.Backoff)
		}

		out.Reconnects++
		if rerr := e.conn.Reconnect(); rerr != nil {
			// The next attempt's EnsureConnected reports it
			logging.Warn("Reconnect failed", zap.Int("attempt", attempt), zap.Error(rerr))
		}
	}

	out.Exhausted = true
	logging.Error("Retries exhausted",
		zap.Int("attempts", out.Attempts),
		zap.Error(out.Err),
	)
	return out
}
