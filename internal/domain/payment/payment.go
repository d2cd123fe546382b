// Package payment defines the gateway collaborator interface and the
// fixed-delay simulator used in place of a real integration.
package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrDeclined is returned when the gateway rejects the payment.
	ErrDeclined = errors.New("payment declined")
	// ErrTimeout is returned when the gateway did not answer before the
	// caller's deadline. Distinct from a decline: the payment outcome is
	// unknown.
	ErrTimeout = errors.New("payment timed out")
)

// Gateway authorizes payments for orders.
type Gateway interface {
	Authorize(ctx context.Context, orderID string) error
}

// Simulator is a Gateway that waits a fixed delay and then succeeds. It
// honors context cancellation, surfacing ErrTimeout.
type Simulator struct {
	delay time.Duration
}

var _ Gateway = (*Simulator)(nil)

// NewSimulator creates a Simulator with the given processing delay.
func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{delay: delay}
}

// Authorize resolves success after the configured delay, or ErrTimeout when
// the context expires first.
func (s *Simulator) Authorize(ctx context.Context, _ string) error {
	t := time.NewTimer(s.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}
