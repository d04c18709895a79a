// Package order defines the order domain and its placement rules.
package order

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/louisbranch/feastly/internal/platform/errors"
)

// StatusPending is the initial status of every placed order.
const StatusPending = "pending"

// Item is one ordered dish with the price snapshotted at order time.
type Item struct {
	MenuItemID int64
	Quantity   int
	UnitPrice  float64
}

// Order is a placed order header with its line items.
type Order struct {
	ID            int64
	UserID        *int64 // nil for guest orders
	Total         float64
	Address       string
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
	Items         []Item
}

// Input carries an untrusted order request.
//
// Total is advisory: clients compute it for display, but the accepted order
// always carries the total recomputed here from the item snapshots.
type Input struct {
	UserID        *int64
	Total         float64
	Address       string
	PaymentMethod string
	Items         []Item
}

// ErrEmptyCart rejects order placement without items.
var ErrEmptyCart = apperrors.E(apperrors.KindInvalidInput, "Cart is empty")

// New validates an order request and produces a pending order.
//
// Quantities below one are rejected. Negative price snapshots are clamped to
// zero the same way the storefront coerces unparseable prices.
func New(input Input, now func() time.Time) (Order, error) {
	if now == nil {
		now = time.Now
	}
	if len(input.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	items := make([]Item, 0, len(input.Items))
	var total float64
	for _, item := range input.Items {
		if item.MenuItemID == 0 {
			return Order{}, apperrors.E(apperrors.KindInvalidInput, "order item is missing an id")
		}
		if item.Quantity < 1 {
			return Order{}, apperrors.E(apperrors.KindInvalidInput, "order item quantity must be at least 1")
		}
		if item.UnitPrice < 0 {
			item.UnitPrice = 0
		}
		total += item.UnitPrice * float64(item.Quantity)
		items = append(items, item)
	}

	return Order{
		UserID:        input.UserID,
		Total:         total,
		Address:       strings.TrimSpace(input.Address),
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		Status:        StatusPending,
		CreatedAt:     now().UTC(),
		Items:         items,
	}, nil
}

// Storage persists orders.
//
// CreateOrder writes the order header and every line item in one atomic
// transaction; a failed item write must roll back the header.
type Storage interface {
	CreateOrder(ctx context.Context, o Order) (int64, error)
}
