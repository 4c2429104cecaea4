package rest

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
	"github.com/orderdesk/crm-console/internal/infrastructure/backend"
	"github.com/orderdesk/crm-console/internal/infrastructure/credstore"
)

// These tests run the real client against the in-process backend, end to end
// through the wire contract: envelope, JWT auth, rotation, RBAC.

func newIntegrationClient(t *testing.T) (*Client, *credstore.MemStore) {
	t.Helper()
	srv, err := backend.New(backend.Options{
		JWTSecret:  "integration-secret",
		SeedOrders: 12,
		Seed:       7,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	store := credstore.NewMemStore()
	return New(Options{BaseURL: ts.URL, Store: store, Logger: zerolog.Nop()}), store
}

func loginAdmin(t *testing.T, client *Client, store ports.CredentialStore) *ports.TokenGrant {
	t.Helper()
	grant, err := client.Login(context.Background(), backend.SeedAdminEmail, backend.SeedAdminPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	user := grant.User
	err = store.Set(context.Background(), domain.StoredSession{
		Credentials: grant.Credentials(),
		Identity:    &user,
	})
	if err != nil {
		t.Fatalf("store grant: %v", err)
	}
	return grant
}

func TestIntegration_OrderLifecycle(t *testing.T) {
	client, store := newIntegrationClient(t)
	loginAdmin(t, client, store)
	ctx := context.Background()

	page, err := client.ListOrders(ctx, ports.OrderFilter{Status: "PENDING", Size: 5})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(page.Content) == 0 {
		t.Fatal("expected seeded PENDING orders")
	}

	id := page.Content[0].ID
	order, err := client.GetOrder(ctx, id)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", order.Status)
	}

	updated, err := client.UpdateOrderStatus(ctx, id, domain.StatusConfirmed, "verified payment")
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if updated.Status != domain.StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", updated.Status)
	}
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	if last.NewStatus != "CONFIRMED" || last.OldStatus == nil || *last.OldStatus != "PENDING" {
		t.Fatalf("unexpected history entry: %+v", last)
	}

	// The backend enforces the transition table too.
	if _, err := client.UpdateOrderStatus(ctx, id, domain.StatusDelivered, ""); err == nil {
		t.Fatal("expected the backend to reject CONFIRMED → DELIVERED")
	}
}

func TestIntegration_ExpiredTokenRefreshedTransparently(t *testing.T) {
	client, store := newIntegrationClient(t)
	grant := loginAdmin(t, client, store)
	ctx := context.Background()

	// Corrupt the access token; the refresh token stays valid.
	user := grant.User
	err := store.Set(ctx, domain.StoredSession{
		Credentials: domain.Credentials{
			AccessToken:  "expired-garbage",
			RefreshToken: grant.RefreshToken,
		},
		Identity: &user,
	})
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	stats, err := client.GetStats(ctx)
	if err != nil {
		t.Fatalf("expected transparent refresh and retry, got %v", err)
	}
	if stats.TotalOrders != 12 {
		t.Fatalf("expected 12 orders, got %d", stats.TotalOrders)
	}

	// The rotated pair landed in the store.
	rec, ok := store.Get()
	if !ok || rec.Credentials.AccessToken == "expired-garbage" {
		t.Fatal("store must hold the refreshed pair")
	}
	if rec.Credentials.RefreshToken == grant.RefreshToken {
		t.Fatal("refresh token must rotate")
	}
}

func TestIntegration_RevokedRefreshTokenIsTerminal(t *testing.T) {
	client, store := newIntegrationClient(t)
	grant := loginAdmin(t, client, store)
	ctx := context.Background()

	// Logout revokes the refresh token server-side.
	if err := client.Logout(ctx, grant.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	user := grant.User
	_ = store.Set(ctx, domain.StoredSession{
		Credentials: domain.Credentials{
			AccessToken:  "expired-garbage",
			RefreshToken: grant.RefreshToken,
		},
		Identity: &user,
	})

	_, err := client.GetStats(ctx)
	if !errors.Is(err, domain.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("store must be cleared after terminal refresh failure")
	}
}

func TestIntegration_AdminSurface(t *testing.T) {
	client, store := newIntegrationClient(t)
	loginAdmin(t, client, store)
	ctx := context.Background()

	flags, err := client.ListFeatureFlags(ctx)
	if err != nil {
		t.Fatalf("ListFeatureFlags: %v", err)
	}
	if len(flags) == 0 {
		t.Fatal("expected seeded feature flags")
	}

	toggled, err := client.ToggleFeatureFlag(ctx, flags[0].FlagKey, !flags[0].Enabled)
	if err != nil {
		t.Fatalf("ToggleFeatureFlag: %v", err)
	}
	if toggled.Enabled == flags[0].Enabled {
		t.Fatalf("flag did not toggle: %+v", toggled)
	}

	results, err := client.SyncChannels(ctx)
	if err != nil {
		t.Fatalf("SyncChannels: %v", err)
	}
	for _, ch := range domain.Channels {
		if _, ok := results[string(ch)]; !ok {
			t.Fatalf("sync results missing channel %s: %v", ch, results)
		}
	}
}

func TestIntegration_ViewerForbiddenFromAdmin(t *testing.T) {
	client, store := newIntegrationClient(t)
	ctx := context.Background()

	grant, err := client.Register(ctx, "viewer@example.com", "longenough1", "Just Looking")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	user := grant.User
	_ = store.Set(ctx, domain.StoredSession{Credentials: grant.Credentials(), Identity: &user})

	if _, err := client.ListFeatureFlags(ctx); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for VIEWER, got %v", err)
	}
}
