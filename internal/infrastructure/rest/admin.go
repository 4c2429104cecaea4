package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

func (c *Client) ListFeatureFlags(ctx context.Context) ([]domain.FeatureFlag, error) {
	var flags []domain.FeatureFlag
	if err := c.Do(ctx, http.MethodGet, "/admin/feature-flags", nil, nil, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

func (c *Client) ToggleFeatureFlag(ctx context.Context, key string, enabled bool) (*domain.FeatureFlag, error) {
	var flag domain.FeatureFlag
	body := map[string]bool{"enabled": enabled}
	if err := c.Do(ctx, http.MethodPut, "/admin/feature-flags/"+url.PathEscape(key), nil, body, &flag); err != nil {
		return nil, err
	}
	return &flag, nil
}

func (c *Client) SyncChannels(ctx context.Context) (map[string]int, error) {
	results := map[string]int{}
	if err := c.Do(ctx, http.MethodPost, "/admin/sync-channels", nil, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}
