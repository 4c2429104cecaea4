package ports

import (
	"context"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

// TokenGrant is the backend's answer to login, register, and refresh: a fresh
// token pair and the identity it was minted for.
type TokenGrant struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	TokenType    string          `json:"tokenType"`
	ExpiresIn    int64           `json:"expiresIn"`
	User         domain.Identity `json:"user"`
}

// Credentials converts the grant into the storable token pair.
func (g *TokenGrant) Credentials() domain.Credentials {
	return domain.Credentials{
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
		ExpiresIn:    g.ExpiresIn,
	}
}

// AuthAPI is the authentication surface of the backend.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*TokenGrant, error)
	Register(ctx context.Context, email, password, fullName string) (*TokenGrant, error)
	// Logout invalidates the refresh token server-side. Callers treat it as
	// best effort.
	Logout(ctx context.Context, refreshToken string) error
}

// OrderFilter carries the query parameters for the order list endpoint.
// Zero-valued string fields are omitted from the query.
type OrderFilter struct {
	Channel string
	Status  string
	Search  string
	From    string // RFC 3339
	To      string // RFC 3339
	Page    int    // 0-based
	Size    int
	SortBy  string // date|amount|customer|status|channel
	SortDir string // asc|desc
}

// OrderPage is one page of the order list plus paging metadata.
type OrderPage struct {
	Content       []domain.Order `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
}

// OrderAPI is the order surface of the backend. The backend owns all order
// state; these calls return read copies.
type OrderAPI interface {
	ListOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	// UpdateOrderStatus issues the mutation and returns the updated order,
	// including the authoritative history entry appended by the backend.
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, notes string) (*domain.Order, error)
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
}

// AdminAPI is the super-admin surface of the backend.
type AdminAPI interface {
	ListFeatureFlags(ctx context.Context) ([]domain.FeatureFlag, error)
	ToggleFeatureFlag(ctx context.Context, key string, enabled bool) (*domain.FeatureFlag, error)
	// SyncChannels triggers an immediate channel import and returns the number
	// of new orders per channel.
	SyncChannels(ctx context.Context) (map[string]int, error)
}
