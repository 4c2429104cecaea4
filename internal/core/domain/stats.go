package domain

import "time"

// ChannelStat is the per-channel slice of the dashboard aggregates.
type ChannelStat struct {
	Channel    Channel `json:"channel"`
	OrderCount int64   `json:"orderCount"`
	Revenue    float64 `json:"revenue"`
}

// DashboardStats are precomputed by the backend; the client only renders them.
type DashboardStats struct {
	TotalOrders     int64            `json:"totalOrders"`
	TotalRevenue    float64          `json:"totalRevenue"`
	TodayOrders     int64            `json:"todayOrders"`
	ChannelStats    []ChannelStat    `json:"channelStats"`
	StatusBreakdown map[string]int64 `json:"statusBreakdown"`
}

// FeatureFlag is a backend-owned toggle surfaced on the admin screen.
type FeatureFlag struct {
	ID          string    `json:"id"`
	FlagKey     string    `json:"flagKey"`
	Enabled     bool      `json:"enabled"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
