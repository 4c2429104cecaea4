package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusReturned   OrderStatus = "RETURNED"
)

// AllStatuses lists every order status in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

// validTransitions defines the allowed state machine transitions.
// CANCELLED and RETURNED are terminal: they have no outgoing edges.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusReturned},
	StatusDelivered:  {StatusReturned},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transitions returns the statuses reachable from s. Terminal statuses return nil.
func (s OrderStatus) Transitions() []OrderStatus {
	return validTransitions[s]
}

// IsTerminal reports whether no further transitions are possible from s.
func (s OrderStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// ParseOrderStatus validates a raw status string against the known set.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, s := range AllStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", ErrUnknownStatus
}

// Channel identifies the sales channel an order was ingested from.
type Channel string

const (
	ChannelAmazon   Channel = "AMAZON"
	ChannelFlipkart Channel = "FLIPKART"
	ChannelWebsite  Channel = "WEBSITE"
)

// Channels lists every known sales channel.
var Channels = []Channel{ChannelAmazon, ChannelFlipkart, ChannelWebsite}

// OrderItem is a single line item on an order.
type OrderItem struct {
	ID          string  `json:"id"`
	ProductName string  `json:"productName"`
	SKU         string  `json:"sku"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

// StatusHistoryEntry records a single accepted status transition on an order.
// Entries are append-only and produced by the backend; the client never
// fabricates one locally.
type StatusHistoryEntry struct {
	ID        string    `json:"id"`
	OldStatus *string   `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedBy *string   `json:"changedBy"`
	Notes     *string   `json:"notes"`
	ChangedAt time.Time `json:"changedAt"`
}

// Order is the backend-owned aggregate. The client holds a read copy only;
// all mutation goes through the status-update endpoint.
type Order struct {
	ID              string               `json:"id"`
	ExternalOrderID string               `json:"externalOrderId"`
	Channel         Channel              `json:"channel"`
	Status          OrderStatus          `json:"status"`
	CustomerName    string               `json:"customerName"`
	CustomerEmail   string               `json:"customerEmail,omitempty"`
	CustomerPhone   string               `json:"customerPhone,omitempty"`
	ShippingAddress string               `json:"shippingAddress,omitempty"`
	TotalAmount     float64              `json:"totalAmount"`
	Currency        string               `json:"currency"`
	Metadata        map[string]any       `json:"metadata,omitempty"`
	OrderedAt       time.Time            `json:"orderedAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	Items           []OrderItem          `json:"items,omitempty"`
	StatusHistory   []StatusHistoryEntry `json:"statusHistory,omitempty"`
}
