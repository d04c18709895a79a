// Package api is the storefront's HTTP client for the feastly server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/feastly/internal/catalog"
	"github.com/louisbranch/feastly/internal/platform/errors"
)

const defaultTimeout = 10 * time.Second

// Client calls the feastly REST API. Every request carries a bounded
// timeout so a stalled server cannot hang the storefront.
type Client struct {
	base       string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the given base URL. A zero timeout selects
// the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:       trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SetToken attaches a bearer token to subsequent requests. An empty token
// clears it.
func (c *Client) SetToken(token string) {
	if c == nil {
		return
	}
	c.token = token
}

// OrderItem is one grouped cart row on the wire. The id keeps whatever
// representation the cart stored.
type OrderItem struct {
	ID    json.RawMessage `json:"id"`
	Qty   int             `json:"qty"`
	Price float64         `json:"price"`
}

// OrderRequest is the checkout submission payload. UserID is null for
// guest orders. Total is advisory; the server recomputes it.
type OrderRequest struct {
	UserID        *int64      `json:"userId"`
	Total         float64     `json:"total"`
	Items         []OrderItem `json:"items"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"paymentMethod"`
}

// SignupRequest creates an account.
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse acknowledges a created account.
type SignupResponse struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session identity and its token.
type LoginResponse struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// Restaurants lists every restaurant.
func (c *Client) Restaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	var restaurants []catalog.Restaurant
	if err := c.get(ctx, "/api/restaurants", &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// Restaurant fetches one restaurant by id.
func (c *Client) Restaurant(ctx context.Context, id int64) (catalog.Restaurant, error) {
	var restaurant catalog.Restaurant
	if err := c.get(ctx, fmt.Sprintf("/api/restaurants/%d", id), &restaurant); err != nil {
		return catalog.Restaurant{}, err
	}
	return restaurant, nil
}

// Menu lists a restaurant's menu items.
func (c *Client) Menu(ctx context.Context, restaurantID int64) ([]catalog.MenuItem, error) {
	var items []catalog.MenuItem
	if err := c.get(ctx, fmt.Sprintf("/api/menu/%d", restaurantID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PlaceOrder submits an order and returns the assigned order id.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (int64, error) {
	var reply struct {
		OrderID int64 `json:"orderId"`
	}
	if err := c.post(ctx, "/api/orders", req, &reply); err != nil {
		return 0, err
	}
	return reply.OrderID, nil
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	var reply SignupResponse
	if err := c.post(ctx, "/api/signup", req, &reply); err != nil {
		return SignupResponse{}, err
	}
	return reply, nil
}

// Login authenticates and returns the session identity.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var reply LoginResponse
	if err := c.post(ctx, "/api/login", req, &reply); err != nil {
		return LoginResponse{}, err
	}
	return reply, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("api client is not configured")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.E(errors.KindUnavailable, "Could not reach the server")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// responseError turns a non-2xx reply into a kinded error, preferring the
// server's own reason when the body carries one.
func responseError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	reason := ""
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		reason = body.Message
		if reason == "" {
			reason = body.Error
		}
	}
	if reason == "" {
		reason = fmt.Sprintf("server replied %d", resp.StatusCode)
	}

	kind := errors.KindUnavailable
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = errors.KindInvalidInput
	case http.StatusUnauthorized:
		kind = errors.KindUnauthorized
	case http.StatusNotFound:
		kind = errors.KindNotFound
	}
	return errors.E(kind, reason)
}
