package backend

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

// user is a backend account record. PasswordHash is bcrypt.
type user struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
}

// refreshRecord tracks one issued refresh token. Tokens rotate: a token is
// revoked the moment it is used, and reuse is rejected.
type refreshRecord struct {
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
}

// store is the in-memory state behind the dev backend. It stands in for the
// production database and is intentionally not durable.
type store struct {
	mu sync.RWMutex

	usersByEmail  map[string]*user
	usersByID     map[string]*user
	refreshTokens map[string]*refreshRecord

	orders     map[string]*domain.Order
	orderOrder []string // insertion order, newest last
	externalID map[string]struct{}

	flags map[string]*domain.FeatureFlag
}

func newStore() *store {
	return &store{
		usersByEmail:  make(map[string]*user),
		usersByID:     make(map[string]*user),
		refreshTokens: make(map[string]*refreshRecord),
		orders:        make(map[string]*domain.Order),
		externalID:    make(map[string]struct{}),
		flags:         make(map[string]*domain.FeatureFlag),
	}
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *store) createUser(u *user) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, exists := s.usersByEmail[key]; exists {
		return false
	}
	s.usersByEmail[key] = u
	s.usersByID[u.ID] = u
	return true
}

func (s *store) userByEmail(email string) (*user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByEmail[strings.ToLower(email)]
	return u, ok
}

func (s *store) userByID(id string) (*user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByID[id]
	return u, ok
}

// ── Refresh tokens ────────────────────────────────────────────────────────────

func (s *store) issueRefreshToken(userID string, ttl time.Duration) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.refreshTokens[token] = &refreshRecord{
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	s.mu.Unlock()
	return token
}

// consumeRefreshToken validates and revokes a token in one step (rotation).
// It returns the owning user ID, or false when the token is unknown, already
// used, or expired.
func (s *store) consumeRefreshToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.refreshTokens[token]
	if !ok || rec.Revoked || time.Now().UTC().After(rec.ExpiresAt) {
		return "", false
	}
	rec.Revoked = true
	return rec.UserID, true
}

// revokeRefreshToken is the logout path: revoking an unknown token is a no-op.
func (s *store) revokeRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.refreshTokens[token]; ok {
		rec.Revoked = true
	}
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (s *store) insertOrder(o *domain.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.externalID[o.ExternalOrderID]; dup {
		return false
	}
	s.orders[o.ID] = o
	s.orderOrder = append(s.orderOrder, o.ID)
	s.externalID[o.ExternalOrderID] = struct{}{}
	return true
}

func (s *store) orderByID(id string) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	clone := cloneOrder(o)
	return &clone, true
}

// updateOrderStatus applies a validated transition and appends the
// authoritative history entry atomically.
func (s *store) updateOrderStatus(id string, target domain.OrderStatus, changedBy, notes string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	old := string(o.Status)
	entry := domain.StatusHistoryEntry{
		ID:        uuid.NewString(),
		OldStatus: &old,
		NewStatus: string(target),
		ChangedAt: now,
	}
	if changedBy != "" {
		entry.ChangedBy = &changedBy
	}
	if notes != "" {
		entry.Notes = &notes
	}

	o.Status = target
	o.UpdatedAt = now
	o.StatusHistory = append(o.StatusHistory, entry)

	clone := cloneOrder(o)
	return &clone, nil
}

// orderQuery mirrors the list endpoint's filter surface.
type orderQuery struct {
	Channel domain.Channel
	Status  domain.OrderStatus
	Search  string
	From    time.Time
	To      time.Time
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

func (s *store) listOrders(q orderQuery) ([]domain.Order, int64) {
	// Clone while holding the lock: status updates mutate the shared records.
	s.mu.RLock()
	matched := make([]domain.Order, 0, len(s.orderOrder))
	for _, id := range s.orderOrder {
		o := s.orders[id]
		if q.Channel != "" && o.Channel != q.Channel {
			continue
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.Search != "" && !matchesSearch(o, q.Search) {
			continue
		}
		if !q.From.IsZero() && o.OrderedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && o.OrderedAt.After(q.To) {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	s.mu.RUnlock()

	sortOrders(matched, q.SortBy, q.SortDir)

	total := int64(len(matched))
	start := q.Page * q.Size
	if start >= len(matched) {
		return []domain.Order{}, total
	}
	end := min(start+q.Size, len(matched))

	page := make([]domain.Order, 0, end-start)
	for _, o := range matched[start:end] {
		// List rows are summaries: detail-only fields stay on the detail view.
		o.Items = nil
		o.StatusHistory = nil
		o.Metadata = nil
		o.ShippingAddress = ""
		page = append(page, o)
	}
	return page, total
}

func (s *store) stats() domain.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byStatus := make(map[string]int64, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		byStatus[string(st)] = 0
	}

	byChannel := make(map[domain.Channel]*domain.ChannelStat, len(domain.Channels))
	for _, ch := range domain.Channels {
		byChannel[ch] = &domain.ChannelStat{Channel: ch}
	}

	var (
		revenue float64
		today   int64
	)
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	for _, o := range s.orders {
		revenue += o.TotalAmount
		byStatus[string(o.Status)]++
		if cs, ok := byChannel[o.Channel]; ok {
			cs.OrderCount++
			cs.Revenue += o.TotalAmount
		}
		if !o.OrderedAt.Before(midnight) {
			today++
		}
	}

	channelStats := make([]domain.ChannelStat, 0, len(domain.Channels))
	for _, ch := range domain.Channels {
		channelStats = append(channelStats, *byChannel[ch])
	}

	return domain.DashboardStats{
		TotalOrders:     int64(len(s.orders)),
		TotalRevenue:    revenue,
		TodayOrders:     today,
		ChannelStats:    channelStats,
		StatusBreakdown: byStatus,
	}
}

// ── Feature flags ─────────────────────────────────────────────────────────────

func (s *store) listFlags() []domain.FeatureFlag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flags := make([]domain.FeatureFlag, 0, len(s.flags))
	for _, f := range s.flags {
		flags = append(flags, *f)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].FlagKey < flags[j].FlagKey })
	return flags
}

func (s *store) toggleFlag(key string, enabled bool) (*domain.FeatureFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flags[key]
	if !ok {
		return nil, domain.ErrFlagNotFound
	}
	f.Enabled = enabled
	f.UpdatedAt = time.Now().UTC()
	clone := *f
	return &clone, nil
}

func (s *store) flagEnabled(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flags[key]
	return ok && f.Enabled
}

func (s *store) putFlag(f *domain.FeatureFlag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[f.FlagKey] = f
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func cloneOrder(o *domain.Order) domain.Order {
	clone := *o
	clone.Items = append([]domain.OrderItem(nil), o.Items...)
	clone.StatusHistory = append([]domain.StatusHistoryEntry(nil), o.StatusHistory...)
	if o.Metadata != nil {
		clone.Metadata = make(map[string]any, len(o.Metadata))
		for k, v := range o.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

func matchesSearch(o *domain.Order, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(o.ExternalOrderID), term) ||
		strings.Contains(strings.ToLower(o.CustomerName), term) ||
		strings.Contains(strings.ToLower(o.CustomerEmail), term)
}

func sortOrders(orders []domain.Order, sortBy, sortDir string) {
	asc := strings.EqualFold(sortDir, "asc")
	less := func(a, b *domain.Order) bool { return a.OrderedAt.Before(b.OrderedAt) }
	switch sortBy {
	case "amount", "totalAmount":
		less = func(a, b *domain.Order) bool { return a.TotalAmount < b.TotalAmount }
	case "customer", "customerName":
		less = func(a, b *domain.Order) bool { return a.CustomerName < b.CustomerName }
	case "status":
		less = func(a, b *domain.Order) bool { return a.Status < b.Status }
	case "channel":
		less = func(a, b *domain.Order) bool { return a.Channel < b.Channel }
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if asc {
			return less(&orders[i], &orders[j])
		}
		return less(&orders[j], &orders[i])
	})
}
