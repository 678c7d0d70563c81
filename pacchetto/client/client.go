// Package client is a typed client for the order REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/fees"
	"github.com/taldoflemis/jollof/pacchetto/orders"
	"github.com/taldoflemis/jollof/pacchetto/session"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidResponse is returned when a response body fails validation.
	ErrInvalidResponse = errors.New("invalid response")
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the sentinel errors so callers can use
// errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrInvalidInput
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return orders.ErrInvalidTransition
	case http.StatusUnprocessableEntity:
		return orders.ErrCodeMismatch
	}
	return nil
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

type Client struct {
	baseURL  string
	http     *http.Client
	session  *session.Session
	validate *validator.Validate
}

func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		session:  sess,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ fees.AddressValidator = (*Client)(nil)

// Login authenticates and stores the token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (api.User, error) {
	var res api.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", api.LoginRequest{Email: email, Password: password}, &res); err != nil {
		return api.User{}, err
	}
	if err := c.validate.Struct(res); err != nil {
		return api.User{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	c.session.Login(res)
	return res.User, nil
}

func (c *Client) ListRestaurantOrders(ctx context.Context, restaurantID string) ([]orders.Order, error) {
	return c.orderList(ctx, http.MethodGet, "/api/restaurants/"+url.PathEscape(restaurantID)+"/orders")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, to orders.Status) (orders.Order, error) {
	return c.order(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(orderID)+"/status", api.UpdateStatusRequest{Status: to})
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (orders.Order, error) {
	return c.order(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), nil)
}

func (c *Client) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (orders.Order, error) {
	if err := c.validate.Struct(req); err != nil {
		return orders.Order{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return c.order(ctx, http.MethodPost, "/api/orders", req)
}

func (c *Client) ConfirmPickup(ctx context.Context, orderID, code string) (orders.Order, error) {
	return c.order(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/confirm-pickup", api.ConfirmPickupRequest{PickupCode: code})
}

func (c *Client) ConfirmDelivery(ctx context.Context, orderID, code string) (orders.Order, error) {
	return c.order(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/confirm-delivery", api.ConfirmDeliveryRequest{DeliveryCode: code})
}

func (c *Client) ListDriverOrders(ctx context.Context, driverID string) ([]orders.Order, error) {
	return c.orderList(ctx, http.MethodGet, "/api/drivers/"+url.PathEscape(driverID)+"/orders")
}

func (c *Client) ListAvailableOrders(ctx context.Context) ([]orders.Order, error) {
	return c.orderList(ctx, http.MethodGet, "/api/drivers/available-orders")
}

func (c *Client) AcceptOrder(ctx context.Context, driverID, orderID string) (orders.Order, error) {
	return c.order(ctx, http.MethodPost, "/api/drivers/"+url.PathEscape(driverID)+"/orders/"+url.PathEscape(orderID)+"/accept", nil)
}

func (c *Client) DriverEarnings(ctx context.Context, driverID string) (orders.Earnings, error) {
	var res orders.Earnings
	err := c.do(ctx, http.MethodGet, "/api/drivers/"+url.PathEscape(driverID)+"/earnings", nil, &res)
	return res, err
}

func (c *Client) ValidateAddress(ctx context.Context, addr fees.Address) (fees.Validation, error) {
	var res fees.Validation
	err := c.do(ctx, http.MethodPost, "/api/validate-address", addr, &res)
	return res, err
}

func (c *Client) order(ctx context.Context, method, path string, body any) (orders.Order, error) {
	var o orders.Order
	if err := c.do(ctx, method, path, body, &o); err != nil {
		return orders.Order{}, err
	}
	if err := c.validate.Struct(o); err != nil {
		return orders.Order{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return o, nil
}

func (c *Client) orderList(ctx context.Context, method, path string) ([]orders.Order, error) {
	var list []orders.Order
	if err := c.do(ctx, method, path, nil, &list); err != nil {
		return nil, err
	}
	for _, o := range list {
		if err := c.validate.Struct(o); err != nil {
			return nil, fmt.Errorf("%w: order %s: %w", ErrInvalidResponse, o.ID, err)
		}
	}
	return list, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.session.Authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			slog.ErrorContext(ctx, "api request failed", slog.String("method", method), slog.String("path", path), slog.Any("err", err))
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e api.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
