package ports

import (
	"context"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

// CredentialStore is the durable holder for the current token pair and the
// identity it belongs to. The record survives process restarts.
//
// Get returns an in-memory snapshot and never blocks on I/O; implementations
// load once at construction and write through on Set/Clear. All three
// operations are atomic with respect to each other: no reader ever observes a
// half-written credential pair. Token content is opaque — stores never
// validate it.
//
// Writes are funnelled through the session service and the refresh
// coordinator only; nothing else mutates the store.
type CredentialStore interface {
	// Get returns the stored session and whether one is present.
	Get() (domain.StoredSession, bool)

	// Set replaces the stored session wholesale.
	Set(ctx context.Context, s domain.StoredSession) error

	// Clear removes the stored session. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
