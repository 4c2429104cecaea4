package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
	"github.com/orderdesk/crm-console/internal/metrics"
)

const logoutTimeout = 5 * time.Second

// SessionState is the snapshot broadcast to subscribers after every session
// change.
type SessionState struct {
	Identity        *domain.Identity
	IsAuthenticated bool
}

// SessionService owns the process-wide authentication state. All session
// mutation funnels through Login, Register, Logout, and the auth-expired
// teardown hook; everything else only reads.
type SessionService struct {
	api   ports.AuthAPI
	store ports.CredentialStore
	log   zerolog.Logger

	mu       sync.RWMutex
	identity *domain.Identity
	subs     map[int]chan SessionState
	nextSub  int
}

// NewSessionService rehydrates session state from the credential store. It
// fails closed: a stored identity with no access token is discarded — absence
// of a token always wins over a cached user record.
func NewSessionService(api ports.AuthAPI, store ports.CredentialStore, log zerolog.Logger) *SessionService {
	s := &SessionService{
		api:   api,
		store: store,
		log:   log,
		subs:  make(map[int]chan SessionState),
	}

	rec, ok := store.Get()
	switch {
	case ok && rec.Authenticated():
		id := *rec.Identity
		s.identity = &id
		log.Debug().Str("user", id.Email).Msg("session restored from credential store")
	case ok:
		// Partial record: stale identity or orphaned token. Drop it.
		if err := store.Clear(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to clear partial session record")
		}
	}
	return s
}

// Identity returns a copy of the authenticated user, or nil.
func (s *SessionService) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// IsAuthenticated reports whether both an identity and an access token are
// present.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()
	if identity == nil {
		return false
	}
	rec, ok := s.store.Get()
	return ok && rec.Credentials.AccessToken != ""
}

// Login authenticates against the backend, then atomically replaces the
// stored credentials and identity and publishes the new state.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	grant, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(ctx, grant); err != nil {
		return nil, err
	}
	metrics.SessionChangesTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("user", grant.User.Email).Msg("logged in")
	return s.Identity(), nil
}

// Register creates an account and logs straight into it. New accounts start
// as VIEWER; role escalation is a backend concern.
func (s *SessionService) Register(ctx context.Context, email, password, fullName string) (*domain.Identity, error) {
	grant, err := s.api.Register(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(ctx, grant); err != nil {
		return nil, err
	}
	metrics.SessionChangesTotal.WithLabelValues("register").Inc()
	s.log.Info().Str("user", grant.User.Email).Msg("registered")
	return s.Identity(), nil
}

// Logout notifies the backend on a best-effort basis and unconditionally
// clears all local state. Calling it twice is safe and yields the same end
// state.
func (s *SessionService) Logout(ctx context.Context) error {
	if rec, ok := s.store.Get(); ok && rec.Credentials.RefreshToken != "" {
		// Fire and forget: revocation failure never blocks local logout.
		go func(token string) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
			defer cancel()
			if err := s.api.Logout(ctx, token); err != nil {
				s.log.Debug().Err(err).Msg("backend logout notification failed")
			}
		}(rec.Credentials.RefreshToken)
	}

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.setIdentity(nil)
	metrics.SessionChangesTotal.WithLabelValues("logout").Inc()
	s.log.Info().Msg("logged out")
	return nil
}

// HandleAuthExpired is the teardown hook wired into the refresh coordinator.
// The coordinator has already emptied the credential store; this drops the
// identity and tells subscribers.
func (s *SessionService) HandleAuthExpired() {
	s.setIdentity(nil)
	metrics.SessionChangesTotal.WithLabelValues("expired").Inc()
	s.log.Warn().Msg("session expired")
}

// Subscribe returns a channel that receives the session state after every
// change, plus a cancel function. A slow subscriber misses intermediate
// states, never blocks a publisher.
func (s *SessionService) Subscribe() (<-chan SessionState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan SessionState, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *SessionService) adopt(ctx context.Context, grant *ports.TokenGrant) error {
	user := grant.User
	rec := domain.StoredSession{Credentials: grant.Credentials(), Identity: &user}
	if err := s.store.Set(ctx, rec); err != nil {
		return err
	}
	s.setIdentity(&user)
	return nil
}

func (s *SessionService) setIdentity(id *domain.Identity) {
	s.mu.Lock()
	s.identity = id
	state := SessionState{Identity: id, IsAuthenticated: id != nil}
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
			// Replace the stale pending state so late readers see the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
	s.mu.Unlock()
}
