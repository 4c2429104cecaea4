package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
	"github.com/orderdesk/crm-console/internal/infrastructure/credstore"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthAPI struct {
	mu          sync.Mutex
	loginErr    error
	registerErr error
	logoutErr   error
	logoutCalls []string
	logoutDone  chan struct{}
}

func newStubAuthAPI() *stubAuthAPI {
	return &stubAuthAPI{logoutDone: make(chan struct{}, 8)}
}

func grantFor(email string, role domain.Role) *ports.TokenGrant {
	return &ports.TokenGrant{
		AccessToken:  "access-" + email,
		RefreshToken: "refresh-" + email,
		TokenType:    "Bearer",
		ExpiresIn:    900,
		User:         domain.Identity{ID: "u-" + email, Email: email, FullName: "Test User", Role: role},
	}
}

func (a *stubAuthAPI) Login(_ context.Context, email, _ string) (*ports.TokenGrant, error) {
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return grantFor(email, domain.RoleAdmin), nil
}

func (a *stubAuthAPI) Register(_ context.Context, email, _, _ string) (*ports.TokenGrant, error) {
	if a.registerErr != nil {
		return nil, a.registerErr
	}
	return grantFor(email, domain.RoleViewer), nil
}

func (a *stubAuthAPI) Logout(_ context.Context, refreshToken string) error {
	a.mu.Lock()
	a.logoutCalls = append(a.logoutCalls, refreshToken)
	a.mu.Unlock()
	a.logoutDone <- struct{}{}
	return a.logoutErr
}

func (a *stubAuthAPI) logoutCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.logoutCalls)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSessionService_LoginStoresSessionAndNotifies(t *testing.T) {
	api := newStubAuthAPI()
	store := credstore.NewMemStore()
	svc := NewSessionService(api, store, zerolog.Nop())

	states, cancel := svc.Subscribe()
	defer cancel()

	id, err := svc.Login(context.Background(), "ops@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id == nil || id.Email != "ops@example.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if !svc.IsAuthenticated() {
		t.Fatal("expected authenticated session after login")
	}

	rec, ok := store.Get()
	if !ok || rec.Credentials.AccessToken != "access-ops@example.com" {
		t.Fatalf("credentials not stored: %+v present=%v", rec, ok)
	}
	if rec.Identity == nil || rec.Identity.Role != domain.RoleAdmin {
		t.Fatalf("identity not stored: %+v", rec.Identity)
	}

	select {
	case st := <-states:
		if !st.IsAuthenticated || st.Identity == nil {
			t.Fatalf("unexpected published state: %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified")
	}
}

func TestSessionService_LoginFailureLeavesStateUntouched(t *testing.T) {
	api := newStubAuthAPI()
	api.loginErr = domain.ErrInvalidCredentials
	store := credstore.NewMemStore()
	svc := NewSessionService(api, store, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "ops@example.com", "bad"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatal("failed login must not authenticate")
	}
	if _, ok := store.Get(); ok {
		t.Fatal("failed login must not write the store")
	}
}

func TestSessionService_RehydratesFromStore(t *testing.T) {
	store := credstore.NewMemStore()
	id := domain.Identity{ID: "u1", Email: "ops@example.com", Role: domain.RoleAdmin}
	seed := domain.StoredSession{
		Credentials: domain.Credentials{AccessToken: "at", RefreshToken: "rt"},
		Identity:    &id,
	}
	if err := store.Set(context.Background(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	svc := NewSessionService(newStubAuthAPI(), store, zerolog.Nop())
	if !svc.IsAuthenticated() {
		t.Fatal("expected session restored from store")
	}
	if got := svc.Identity(); got == nil || got.Email != "ops@example.com" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestSessionService_RehydrationFailsClosedWithoutToken(t *testing.T) {
	store := credstore.NewMemStore()
	id := domain.Identity{ID: "u1", Email: "stale@example.com", Role: domain.RoleSuperAdmin}
	// Stale identity record with no access token: must be discarded.
	if err := store.Set(context.Background(), domain.StoredSession{Identity: &id}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	svc := NewSessionService(newStubAuthAPI(), store, zerolog.Nop())
	if svc.IsAuthenticated() {
		t.Fatal("identity without access token must not authenticate")
	}
	if svc.Identity() != nil {
		t.Fatal("stale identity must be discarded")
	}
	if _, ok := store.Get(); ok {
		t.Fatal("partial record must be cleared from the store")
	}
}

func TestSessionService_LogoutIsIdempotentAndBestEffort(t *testing.T) {
	api := newStubAuthAPI()
	api.logoutErr = errors.New("backend down")
	store := credstore.NewMemStore()
	svc := NewSessionService(api, store, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "ops@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout: %v", err)
	}

	if svc.IsAuthenticated() {
		t.Fatal("expected unauthenticated state after logout")
	}
	if _, ok := store.Get(); ok {
		t.Fatal("store must be empty after logout")
	}

	// The backend notification is fired once, for the first logout only;
	// its failure is swallowed.
	select {
	case <-api.logoutDone:
	case <-time.After(time.Second):
		t.Fatal("backend logout was never attempted")
	}
	if n := api.logoutCount(); n != 1 {
		t.Fatalf("expected exactly one logout notification, got %d", n)
	}
}

func TestSessionService_HandleAuthExpiredClearsIdentity(t *testing.T) {
	api := newStubAuthAPI()
	store := credstore.NewMemStore()
	svc := NewSessionService(api, store, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "ops@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	states, cancel := svc.Subscribe()
	defer cancel()

	// The coordinator clears the store before invoking the hook.
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	svc.HandleAuthExpired()

	if svc.IsAuthenticated() || svc.Identity() != nil {
		t.Fatal("expected torn-down session")
	}
	select {
	case st := <-states:
		if st.IsAuthenticated {
			t.Fatalf("expected unauthenticated state, got %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified of expiry")
	}
}
