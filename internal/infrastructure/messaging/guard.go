package messaging

import (
	"context"

	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/pkg/circuitbreaker"
)

// Guard runs reactor through cb. While the circuit is open the reactor is
// skipped and circuitbreaker.ErrCircuitOpen is reported as its failure.
// One breaker may guard several reactors that share a dependency.
func Guard(cb *circuitbreaker.CircuitBreaker, reactor shared.Reactor) shared.Reactor {
	return func(ctx context.Context, n shared.Notification) error {
		return cb.Execute(ctx, func(ctx context.Context) error {
			return reactor(ctx, n)
		})
	}
}
