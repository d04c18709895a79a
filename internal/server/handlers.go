package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/feastly/internal/auth/token"
	"github.com/louisbranch/feastly/internal/auth/user"
	"github.com/louisbranch/feastly/internal/order"
	apperrors "github.com/louisbranch/feastly/internal/platform/errors"
	"github.com/louisbranch/feastly/internal/server/httpx"
	"github.com/louisbranch/feastly/internal/storage"
)

var tracer = otel.Tracer("feastly/server")

var errNotFound = apperrors.E(apperrors.KindNotFound, "Not found")
var errBadBody = apperrors.E(apperrors.KindInvalidInput, "Invalid request body")

type handler struct {
	store  Storage
	tokens token.Config
}

func (h *handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.store.ListRestaurants(httpx.RequestContext(r))
	if err != nil {
		httpx.WriteError(w, fmt.Errorf("list restaurants: %w", err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, restaurants)
}

func (h *handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, errNotFound)
		return
	}

	restaurant, err := h.store.GetRestaurant(httpx.RequestContext(r), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.WriteError(w, errNotFound)
			return
		}
		httpx.WriteError(w, fmt.Errorf("get restaurant %d: %w", id, err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, restaurant)
}

func (h *handler) listMenu(w http.ResponseWriter, r *http.Request) {
	// An unparseable restaurant id matches nothing, so the reply is the
	// same empty list an unknown id gets.
	restaurantID, err := strconv.ParseInt(r.PathValue("restaurantId"), 10, 64)
	if err != nil {
		_ = httpx.WriteJSON(w, http.StatusOK, []struct{}{})
		return
	}

	menu, err := h.store.ListMenu(httpx.RequestContext(r), restaurantID)
	if err != nil {
		httpx.WriteError(w, fmt.Errorf("list menu %d: %w", restaurantID, err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, menu)
}

// flexID accepts menu item ids sent either as JSON numbers or strings.
// Anything else coerces to zero and fails order validation.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = 0
		return nil
	}
	literal := string(trimmed)
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			*f = 0
			return nil
		}
		literal = strings.TrimSpace(value)
	}
	parsed, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexID(parsed)
	return nil
}

type orderRequest struct {
	UserID        *int64  `json:"userId"`
	Total         float64 `json:"total"`
	Address       string  `json:"address"`
	PaymentMethod string  `json:"paymentMethod"`
	Items         []struct {
		ID    flexID  `json:"id"`
		Qty   int     `json:"qty"`
		Price float64 `json:"price"`
	} `json:"items"`
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, errBadBody)
		return
	}

	input := order.Input{
		UserID:        req.UserID,
		Total:         req.Total,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, order.Item{
			MenuItemID: int64(item.ID),
			Quantity:   item.Qty,
			UnitPrice:  item.Price,
		})
	}

	// A valid bearer token is more trustworthy than the claimed userId.
	if claims, ok := h.bearerClaims(r); ok {
		input.UserID = &claims.UserID
	}

	placed, err := order.New(input, nil)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	ctx, span := tracer.Start(httpx.RequestContext(r), "orders.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int("order.items", len(placed.Items)),
		attribute.Float64("order.total", placed.Total),
	)

	orderID, err := h.store.CreateOrder(ctx, placed)
	if err != nil {
		span.SetStatus(otelcodes.Error, "order write failed")
		httpx.WriteError(w, fmt.Errorf("create order: %w", err))
		return
	}
	span.SetAttributes(attribute.Int64("order.id", orderID))
	_ = httpx.WriteJSON(w, http.StatusCreated, map[string]any{"orderId": orderID})
}

// bearerClaims verifies an optional Authorization header. Orders without a
// token, or with a stale one, still go through as claimed.
func (h *handler) bearerClaims(r *http.Request) (token.Claims, bool) {
	value := strings.TrimSpace(r.Header.Get("Authorization"))
	if value == "" || len(h.tokens.Secret) == 0 {
		return token.Claims{}, false
	}
	value = strings.TrimPrefix(value, "Bearer ")
	claims, err := token.Verify(h.tokens, value)
	if err != nil {
		return token.Claims{}, false
	}
	return claims, true
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, errBadBody)
		return
	}

	account, err := user.New(user.SignupInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}, nil)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	userID, err := h.store.CreateUser(httpx.RequestContext(r), account)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			err = fmt.Errorf("create user: %w", err)
		}
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"userId": userID,
		"name":   account.FullName,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, errBadBody)
		return
	}

	account, err := h.store.GetByCredentials(
		httpx.RequestContext(r),
		strings.ToLower(strings.TrimSpace(req.Email)),
		req.Password,
	)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			err = fmt.Errorf("login: %w", err)
		}
		httpx.WriteError(w, err)
		return
	}

	signed, err := token.Mint(h.tokens, account.ID, account.FullName)
	if err != nil {
		httpx.WriteError(w, fmt.Errorf("mint session token: %w", err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"userId": account.ID,
		"name":   account.FullName,
		"email":  account.Email,
		"token":  signed,
	})
}
