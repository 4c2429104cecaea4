package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
	"github.com/orderdesk/crm-console/internal/metrics"
)

// RefreshCoordinator deduplicates concurrent token-refresh attempts into a
// single outstanding backend call. Callers that arrive while a refresh is in
// flight attach to the same operation and all observe the same resolution.
//
// A refresh always runs to completion on a detached context: a caller that
// abandons its request cannot cancel a refresh other callers (or the store)
// depend on.
type RefreshCoordinator struct {
	client *Client
	store  ports.CredentialStore
	group  singleflight.Group
	log    zerolog.Logger

	// onExpired is invoked after a terminal refresh failure, once the store
	// has been cleared. The session layer hooks its teardown here.
	onExpired func()
}

func newRefreshCoordinator(client *Client, store ports.CredentialStore, log zerolog.Logger) *RefreshCoordinator {
	return &RefreshCoordinator{client: client, store: store, log: log}
}

// OnAuthExpired registers the teardown hook. Must be called during wiring,
// before any request traffic.
func (r *RefreshCoordinator) OnAuthExpired(fn func()) {
	r.onExpired = fn
}

// Refresh exchanges the stored refresh token for a new token pair. The new
// credentials are written to the store before Refresh returns, so a retry
// issued afterwards always sees the fresh token.
//
// If the backend rejects the refresh token the session is torn down (store
// cleared, hook fired) and every attached caller receives ErrAuthExpired.
// Transport failures are returned as-is and do not tear the session down.
func (r *RefreshCoordinator) Refresh(ctx context.Context) (domain.Credentials, error) {
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.refreshOnce(context.WithoutCancel(ctx))
	})
	if shared {
		metrics.RefreshCoalescedTotal.Inc()
	}
	if err != nil {
		return domain.Credentials{}, err
	}
	return v.(domain.Credentials), nil
}

func (r *RefreshCoordinator) refreshOnce(ctx context.Context) (domain.Credentials, error) {
	rec, ok := r.store.Get()
	if !ok || rec.Credentials.RefreshToken == "" {
		r.teardown(ctx)
		metrics.RefreshTotal.WithLabelValues("expired").Inc()
		return domain.Credentials{}, fmt.Errorf("no refresh token: %w", domain.ErrAuthExpired)
	}

	var grant ports.TokenGrant
	err := r.client.send(ctx, http.MethodPost, "/auth/refresh",
		nil, map[string]string{"refreshToken": rec.Credentials.RefreshToken}, &grant, false)
	if err != nil {
		if _, ok := asAPIError(err); ok {
			// The backend saw the token and said no. Terminal.
			r.teardown(ctx)
			metrics.RefreshTotal.WithLabelValues("expired").Inc()
			r.log.Warn().Err(err).Msg("refresh token rejected, session torn down")
			return domain.Credentials{}, fmt.Errorf("refresh rejected: %w", domain.ErrAuthExpired)
		}
		metrics.RefreshTotal.WithLabelValues("error").Inc()
		return domain.Credentials{}, err
	}

	creds := grant.Credentials()
	user := grant.User
	if err := r.store.Set(ctx, domain.StoredSession{Credentials: creds, Identity: &user}); err != nil {
		metrics.RefreshTotal.WithLabelValues("error").Inc()
		return domain.Credentials{}, fmt.Errorf("store refreshed credentials: %w", err)
	}

	metrics.RefreshTotal.WithLabelValues("success").Inc()
	r.log.Debug().Str("user", user.Email).Msg("token pair refreshed")
	return creds, nil
}

func (r *RefreshCoordinator) teardown(ctx context.Context) {
	if err := r.store.Clear(ctx); err != nil {
		r.log.Error().Err(err).Msg("failed to clear credential store on teardown")
	}
	if r.onExpired != nil {
		r.onExpired()
	}
}
