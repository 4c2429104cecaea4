package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
)

func (c *Client) ListOrders(ctx context.Context, filter ports.OrderFilter) (*ports.OrderPage, error) {
	q := url.Values{}
	setIfPresent := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	setIfPresent("channel", filter.Channel)
	setIfPresent("status", filter.Status)
	setIfPresent("search", filter.Search)
	setIfPresent("from", filter.From)
	setIfPresent("to", filter.To)
	setIfPresent("sortBy", filter.SortBy)
	setIfPresent("sortDir", filter.SortDir)
	q.Set("page", strconv.Itoa(filter.Page))
	if filter.Size > 0 {
		q.Set("size", strconv.Itoa(filter.Size))
	}

	var page ports.OrderPage
	if err := c.Do(ctx, http.MethodGet, "/orders", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := c.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, notes string) (*domain.Order, error) {
	body := map[string]string{"status": string(status)}
	if notes != "" {
		body["notes"] = notes
	}

	var order domain.Order
	if err := c.Do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", nil, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.Do(ctx, http.MethodGet, "/orders/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
