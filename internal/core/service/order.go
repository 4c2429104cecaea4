package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
)

// identitySource is the read-only slice of the session the order and admin
// services need.
type identitySource interface {
	Identity() *domain.Identity
}

// OrderService drives the order screens: listing, detail, dashboard stats,
// and the status mutation path guarded by the transition table.
type OrderService struct {
	api     ports.OrderAPI
	session identitySource
	log     zerolog.Logger
}

func NewOrderService(api ports.OrderAPI, session identitySource, log zerolog.Logger) *OrderService {
	return &OrderService{api: api, session: session, log: log}
}

func (s *OrderService) List(ctx context.Context, filter ports.OrderFilter) (*ports.OrderPage, error) {
	return s.api.ListOrders(ctx, filter)
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.api.GetOrder(ctx, id)
}

func (s *OrderService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	return s.api.GetStats(ctx)
}

// ChangeStatus validates the transition locally, then issues the mutation.
// An illegal transition or an unauthorized caller is rejected before anything
// reaches the wire. The returned order carries the authoritative history
// entry appended by the backend — the local check records nothing.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID string, target domain.OrderStatus, notes string) (*domain.Order, error) {
	caller := s.session.Identity()
	if caller == nil {
		return nil, domain.ErrNoSession
	}

	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	transition, err := domain.ProposeStatusChange(order, target, caller.Role)
	if err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateOrderStatus(ctx, orderID, target, notes)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}

	s.log.Info().
		Str("order", updated.ExternalOrderID).
		Str("from", string(transition.From)).
		Str("to", string(transition.To)).
		Str("by", caller.Email).
		Msg("order status changed")
	return updated, nil
}
