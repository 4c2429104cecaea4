package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubOrderAPI struct {
	orders     map[string]*domain.Order
	getErr     error
	updateErr  error
	updates    []string // "<id>:<status>"
	statsCalls int
}

func newStubOrderAPI() *stubOrderAPI {
	return &stubOrderAPI{orders: make(map[string]*domain.Order)}
}

func (a *stubOrderAPI) ListOrders(_ context.Context, _ ports.OrderFilter) (*ports.OrderPage, error) {
	page := &ports.OrderPage{Page: 0, Size: len(a.orders), First: true, Last: true}
	for _, o := range a.orders {
		page.Content = append(page.Content, *o)
	}
	page.TotalElements = int64(len(page.Content))
	page.TotalPages = 1
	return page, nil
}

func (a *stubOrderAPI) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	if a.getErr != nil {
		return nil, a.getErr
	}
	o, ok := a.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (a *stubOrderAPI) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus, notes string) (*domain.Order, error) {
	if a.updateErr != nil {
		return nil, a.updateErr
	}
	o, ok := a.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	a.updates = append(a.updates, id+":"+string(status))

	old := string(o.Status)
	o.Status = status
	entry := domain.StatusHistoryEntry{
		ID:        "h" + id,
		OldStatus: &old,
		NewStatus: string(status),
		ChangedAt: time.Now().UTC(),
	}
	if notes != "" {
		entry.Notes = &notes
	}
	o.StatusHistory = append(o.StatusHistory, entry)
	clone := *o
	return &clone, nil
}

func (a *stubOrderAPI) GetStats(_ context.Context) (*domain.DashboardStats, error) {
	a.statsCalls++
	return &domain.DashboardStats{TotalOrders: int64(len(a.orders))}, nil
}

type fixedIdentity struct {
	id *domain.Identity
}

func (f fixedIdentity) Identity() *domain.Identity { return f.id }

func adminCaller() fixedIdentity {
	return fixedIdentity{id: &domain.Identity{ID: "u1", Email: "admin@example.com", Role: domain.RoleAdmin}}
}

func viewerCaller() fixedIdentity {
	return fixedIdentity{id: &domain.Identity{ID: "u2", Email: "viewer@example.com", Role: domain.RoleViewer}}
}

func seededOrderAPI(id string, status domain.OrderStatus) *stubOrderAPI {
	api := newStubOrderAPI()
	api.orders[id] = &domain.Order{
		ID:              id,
		ExternalOrderID: "AMZ-1001",
		Channel:         domain.ChannelAmazon,
		Status:          status,
	}
	return api
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestOrderService_ChangeStatus_HappyPath(t *testing.T) {
	api := seededOrderAPI("ord1", domain.StatusPending)
	svc := NewOrderService(api, adminCaller(), zerolog.Nop())

	updated, err := svc.ChangeStatus(context.Background(), "ord1", domain.StatusConfirmed, "verified by phone")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if updated.Status != domain.StatusConfirmed {
		t.Fatalf("unexpected status: %s", updated.Status)
	}
	if len(updated.StatusHistory) != 1 {
		t.Fatalf("expected one history entry, got %d", len(updated.StatusHistory))
	}
	entry := updated.StatusHistory[0]
	if entry.OldStatus == nil || *entry.OldStatus != string(domain.StatusPending) || entry.NewStatus != string(domain.StatusConfirmed) {
		t.Fatalf("unexpected history entry: %+v", entry)
	}
	if len(api.updates) != 1 || api.updates[0] != "ord1:CONFIRMED" {
		t.Fatalf("unexpected wire calls: %v", api.updates)
	}
}

func TestOrderService_ChangeStatus_InvalidTransitionNeverReachesWire(t *testing.T) {
	api := seededOrderAPI("ord1", domain.StatusDelivered)
	svc := NewOrderService(api, adminCaller(), zerolog.Nop())

	_, err := svc.ChangeStatus(context.Background(), "ord1", domain.StatusCancelled, "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(api.updates) != 0 {
		t.Fatalf("rejected transition must not issue a mutation, got %v", api.updates)
	}
}

func TestOrderService_ChangeStatus_ForbiddenForViewer(t *testing.T) {
	api := seededOrderAPI("ord1", domain.StatusPending)
	svc := NewOrderService(api, viewerCaller(), zerolog.Nop())

	_, err := svc.ChangeStatus(context.Background(), "ord1", domain.StatusConfirmed, "")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(api.updates) != 0 {
		t.Fatalf("forbidden caller must not issue a mutation, got %v", api.updates)
	}
}

func TestOrderService_ChangeStatus_RequiresSession(t *testing.T) {
	api := seededOrderAPI("ord1", domain.StatusPending)
	svc := NewOrderService(api, fixedIdentity{}, zerolog.Nop())

	_, err := svc.ChangeStatus(context.Background(), "ord1", domain.StatusConfirmed, "")
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestAdminService_CapabilityGate(t *testing.T) {
	admin := NewAdminService(stubAdminAPI{}, viewerCaller(), zerolog.Nop())
	if _, err := admin.ListFlags(context.Background()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("viewer must be rejected locally, got %v", err)
	}
	if _, err := admin.SyncChannels(context.Background()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("viewer must be rejected locally, got %v", err)
	}

	// ADMIN can update orders but the admin surface stays SUPER_ADMIN only.
	asAdmin := NewAdminService(stubAdminAPI{}, adminCaller(), zerolog.Nop())
	if _, err := asAdmin.ToggleFlag(context.Background(), "dark_mode", true); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("ADMIN must be rejected from flag management, got %v", err)
	}

	super := fixedIdentity{id: &domain.Identity{ID: "u0", Email: "root@example.com", Role: domain.RoleSuperAdmin}}
	asSuper := NewAdminService(stubAdminAPI{}, super, zerolog.Nop())
	if _, err := asSuper.ListFlags(context.Background()); err != nil {
		t.Fatalf("super admin should pass the local gate: %v", err)
	}
}

type stubAdminAPI struct{}

func (stubAdminAPI) ListFeatureFlags(_ context.Context) ([]domain.FeatureFlag, error) {
	return []domain.FeatureFlag{{FlagKey: "dark_mode", Enabled: false}}, nil
}

func (stubAdminAPI) ToggleFeatureFlag(_ context.Context, key string, enabled bool) (*domain.FeatureFlag, error) {
	return &domain.FeatureFlag{FlagKey: key, Enabled: enabled}, nil
}

func (stubAdminAPI) SyncChannels(_ context.Context) (map[string]int, error) {
	return map[string]int{"AMAZON": 2}, nil
}
