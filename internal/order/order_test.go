package order

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/feastly/internal/platform/errors"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func TestNewRejectsEmptyCart(t *testing.T) {
	_, err := New(Input{Address: "12 Main St"}, fixedNow)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestNewRecomputesTotalIgnoringClientValue(t *testing.T) {
	input := Input{
		Total:   9999, // advisory, must be ignored
		Address: "12 Main St, Lahore",
		Items: []Item{
			{MenuItemID: 101, Quantity: 2, UnitPrice: 200},
			{MenuItemID: 201, Quantity: 1, UnitPrice: 100},
		},
	}
	placed, err := New(input, fixedNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if placed.Total != 500 {
		t.Fatalf("total = %v, want 500", placed.Total)
	}
	if placed.Status != StatusPending {
		t.Fatalf("status = %q, want %q", placed.Status, StatusPending)
	}
	if !placed.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("created at = %v", placed.CreatedAt)
	}
}

func TestNewClampsNegativePrices(t *testing.T) {
	placed, err := New(Input{
		Address: "somewhere",
		Items:   []Item{{MenuItemID: 5, Quantity: 3, UnitPrice: -10}},
	}, fixedNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if placed.Total != 0 {
		t.Fatalf("total = %v, want 0", placed.Total)
	}
}

func TestNewRejectsBadItems(t *testing.T) {
	cases := []struct {
		name string
		item Item
	}{
		{"missing id", Item{Quantity: 1, UnitPrice: 10}},
		{"zero quantity", Item{MenuItemID: 1, Quantity: 0, UnitPrice: 10}},
		{"negative quantity", Item{MenuItemID: 1, Quantity: -2, UnitPrice: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Input{Address: "a", Items: []Item{tc.item}}, fixedNow)
			if apperrors.KindOf(err) != apperrors.KindInvalidInput {
				t.Fatalf("err = %v, want invalid input", err)
			}
		})
	}
}

func TestNewAllowsGuestOrders(t *testing.T) {
	placed, err := New(Input{
		Address: "guest address",
		Items:   []Item{{MenuItemID: 1, Quantity: 1, UnitPrice: 450}},
	}, fixedNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if placed.UserID != nil {
		t.Fatalf("user id = %v, want nil", placed.UserID)
	}
}
