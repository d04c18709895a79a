// Package checkout drives the storefront's order submission flow.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/feastly/internal/order"
	"github.com/louisbranch/feastly/internal/platform/errors"
	"github.com/louisbranch/feastly/internal/shop/api"
	"github.com/louisbranch/feastly/internal/shop/cart"
)

var tracer trace.Tracer = otel.Tracer("feastly/shop/checkout")

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not finished.
var ErrSubmissionInFlight = errors.E(errors.KindInvalidInput, "Order submission already in progress")

// ErrMissingFields is the single inline validation message for the form.
var ErrMissingFields = errors.E(errors.KindInvalidInput, "Please fill in all required fields.")

// Submitter is the slice of the API client the flow needs.
type Submitter interface {
	PlaceOrder(ctx context.Context, req api.OrderRequest) (int64, error)
}

// Form is the delivery form as the customer filled it in.
type Form struct {
	FullName      string
	Address       string
	City          string
	PaymentMethod string
}

// Flow submits orders. One submission may be in flight at a time; while it
// runs, further Submit calls are refused instead of queued.
type Flow struct {
	store  *cart.Store
	client Submitter

	// OnBadge is notified with the new cart count after a successful
	// submission clears the cart. Optional.
	OnBadge func(count int)
	// OnSuccess is notified exactly once per successful submission, with
	// the assigned order id. Optional.
	OnSuccess func(orderID int64)

	submitting atomic.Bool
}

// NewFlow wires the checkout flow to the cart store and the API client.
func NewFlow(store *cart.Store, client Submitter) *Flow {
	return &Flow{store: store, client: client}
}

// BuildOrderPayload converts grouped cart rows into the wire payload. The
// client-side total is advisory; the server recomputes it.
func BuildOrderPayload(groups []cart.Grouped, userID *int64, form Form) api.OrderRequest {
	items := make([]api.OrderItem, 0, len(groups))
	var total float64
	for _, g := range groups {
		price := g.Item.Price.Amount()
		raw, err := json.Marshal(g.Item.ID)
		if err != nil {
			raw = json.RawMessage("null")
		}
		items = append(items, api.OrderItem{ID: raw, Qty: g.Qty, Price: price})
		total += price * float64(g.Qty)
	}

	payment := strings.TrimSpace(form.PaymentMethod)
	if payment == "" {
		payment = "COD"
	}
	return api.OrderRequest{
		UserID:        userID,
		Total:         total,
		Items:         items,
		Address:       strings.TrimSpace(form.Address) + ", " + strings.TrimSpace(form.City),
		PaymentMethod: payment,
	}
}

// Submit validates the form, sends the order, and on success clears the
// cart and fires the listeners. Validation failures and an empty cart are
// reported before any network call; any failure leaves the cart untouched.
func (f *Flow) Submit(ctx context.Context, form Form, userID *int64) (int64, error) {
	if f == nil || f.store == nil || f.client == nil {
		return 0, fmt.Errorf("checkout flow is not configured")
	}
	if !f.submitting.CompareAndSwap(false, true) {
		return 0, ErrSubmissionInFlight
	}
	defer f.submitting.Store(false)

	if strings.TrimSpace(form.FullName) == "" ||
		strings.TrimSpace(form.Address) == "" ||
		strings.TrimSpace(form.City) == "" {
		return 0, ErrMissingFields
	}

	items, _, err := f.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return 0, order.ErrEmptyCart
	}

	groups := cart.Group(items)
	payload := BuildOrderPayload(groups, userID, form)

	ctx, span := tracer.Start(ctx, "checkout.submit")
	span.SetAttributes(
		attribute.Int("cart.items", len(items)),
		attribute.Float64("order.total", payload.Total),
	)
	defer span.End()

	orderID, err := f.client.PlaceOrder(ctx, payload)
	if err != nil {
		span.SetStatus(codes.Error, errors.Message(err))
		return 0, err
	}
	span.SetAttributes(attribute.Int64("order.id", orderID))

	if err := f.store.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clear cart after order %d: %w", orderID, err)
	}
	if f.OnBadge != nil {
		f.OnBadge(0)
	}
	if f.OnSuccess != nil {
		f.OnSuccess(orderID)
	}
	return orderID, nil
}
