package backend

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// orderPageResponse mirrors the paging contract the console expects.
type orderPageResponse struct {
	Content       []domain.Order `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

func (s *Server) handleListOrders(c echo.Context) error {
	q := orderQuery{
		Channel: domain.Channel(c.QueryParam("channel")),
		Search:  c.QueryParam("search"),
		SortBy:  c.QueryParam("sortBy"),
		SortDir: c.QueryParam("sortDir"),
		Size:    defaultPageSize,
	}

	if raw := c.QueryParam("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			return err
		}
		q.Status = status
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC 3339")
		}
		q.From = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC 3339")
		}
		q.To = t
	}
	if raw := c.QueryParam("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 0 {
			q.Page = page
		}
	}
	if raw := c.QueryParam("size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			q.Size = min(size, maxPageSize)
		}
	}

	content, total := s.store.listOrders(q)

	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	return respond(c, http.StatusOK, orderPageResponse{
		Content:       content,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         q.Page == 0,
		Last:          q.Page >= totalPages-1,
	})
}

func (s *Server) handleGetOrder(c echo.Context) error {
	order, ok := s.store.orderByID(c.Param("id"))
	if !ok {
		return domain.ErrOrderNotFound
	}
	return respond(c, http.StatusOK, order)
}

// handleUpdateStatus applies a status transition. The transition table is
// enforced here as well as in the console: the backend is the authority.
func (s *Server) handleUpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	target, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return err
	}

	identity := callerIdentity(c)
	order, err := s.store.updateOrderStatus(c.Param("id"), target, identity.ID, req.Notes)
	if err != nil {
		return err
	}

	s.log.Info().
		Str("order", order.ID).
		Str("status", string(target)).
		Str("by", identity.Email).
		Msg("order status updated")
	return respond(c, http.StatusOK, order)
}

func (s *Server) handleStats(c echo.Context) error {
	return respond(c, http.StatusOK, s.store.stats())
}
