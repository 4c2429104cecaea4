package domain

import "fmt"

// StatusTransition is a validated from→to pair accepted by the status machine.
type StatusTransition struct {
	From OrderStatus
	To   OrderStatus
}

// ProposeStatusChange is the pre-flight guard for order mutation. It checks
// the transition table and the caller's role before anything reaches the wire,
// and is the single authorization boundary for status changes — the console
// gates its forms on the same call.
//
// It performs no I/O and fabricates no history: the authoritative history
// entry is always the one the backend returns with the updated order.
func ProposeStatusChange(order *Order, target OrderStatus, caller Role) (StatusTransition, error) {
	if !caller.Can(CapUpdateOrderStatus) {
		return StatusTransition{}, fmt.Errorf("role %s cannot update order status: %w", caller, ErrForbidden)
	}
	if !order.Status.CanTransitionTo(target) {
		return StatusTransition{}, fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, order.Status, target)
	}
	return StatusTransition{From: order.Status, To: target}, nil
}
