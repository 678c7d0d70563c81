package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taldoflemis/jollof/pacchetto"
	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/auth"
	"github.com/taldoflemis/jollof/pacchetto/fees"
	"github.com/taldoflemis/jollof/pacchetto/orders"
)

type testServer struct {
	e             *echo.Echo
	svc           *OrderService
	authenticator *auth.Authenticator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc, _ := newTestService(t)

	settings := &Settings{
		App: pacchetto.AppSettings{Name: "ordini", Version: "test"},
		HTTP: pacchetto.HTTPSettings{
			Prefix: "/api",
			CORS: pacchetto.CORSSettings{
				Origins: []string{"http://localhost:3000"},
				Methods: []string{"GET", "POST", "PATCH"},
				Headers: []string{"Authorization", "Content-Type"},
			},
		},
		Auth: pacchetto.AuthSettings{JWTSecret: "handler-test-secret-value", TokenTTLInMinutes: 60, Issuer: "ordini-test"},
	}
	authenticator := auth.NewAuthenticator(settings.Auth)

	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{Name: "ordini", Version: "test"}),
		healthgo.WithChecks(healthgo.Config{Name: "database", Check: svc.store.Ping}),
	)
	require.NoError(t, err)

	e := echo.New()
	NewMainHandler(e, settings, svc, NewLoginService(svc.store, authenticator), authenticator, health)
	return &testServer{e: e, svc: svc, authenticator: authenticator}
}

func (s *testServer) token(t *testing.T, user api.User) string {
	t.Helper()
	res, err := s.authenticator.Issue(user)
	require.NoError(t, err)
	return res.AccessToken
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLoginHandler(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "demo owner", body: api.LoginRequest{Email: "Owner@jollof.ch", Password: demoPassword}, wantStatus: http.StatusOK},
		{name: "wrong password", body: api.LoginRequest{Email: "owner@jollof.ch", Password: "nope"}, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", body: api.LoginRequest{Email: "ghost@jollof.ch", Password: demoPassword}, wantStatus: http.StatusUnauthorized},
		{name: "not an email", body: api.LoginRequest{Email: "owner", Password: demoPassword}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/auth/login", tt.body, "")

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, decode[api.ErrorResponse](t, rec).Error)
				return
			}
			res := decode[api.LoginResponse](t, rec)
			assert.Equal(t, "u-owner", res.User.ID)
			assert.Equal(t, api.RoleRestaurant, res.User.Role)
			assert.Equal(t, demoRestaurantID, res.User.RestaurantID)
			assert.NotEmpty(t, res.AccessToken)
		})
	}
}

func TestValidateAddressHandler(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/validate-address",
		fees.Address{Street: "Spalenring 3", City: "Basel", PostalCode: "4055"}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[fees.Validation](t, rec)
	assert.True(t, got.Valid)
	assert.Equal(t, "6.00", got.DeliveryFee.StringFixed(2))
}

func TestCreateOrderHandler(t *testing.T) {
	srv := newTestServer(t)

	t.Run("guest checkout", func(t *testing.T) {
		req := orderRequest()
		req.Guest = &api.Guest{Name: "Lea Meier", Email: "lea@example.ch", Phone: "+41791234567"}

		rec := srv.do(t, http.MethodPost, "/api/orders", req, "")

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		o := decode[orders.Order](t, rec)
		assert.Equal(t, orders.StatusNew, o.Status)
		assert.Equal(t, "50.12", o.Total().StringFixed(2))
	})

	t.Run("signed-in customer", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/orders", orderRequest(), srv.token(t, customer))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, customer.ID, decode[orders.Order](t, rec).CustomerID)
	})

	tests := []struct {
		name       string
		mutate     func(*api.CreateOrderRequest)
		token      string
		wantStatus int
	}{
		{name: "anonymous without guest", mutate: func(*api.CreateOrderRequest) {}, wantStatus: http.StatusBadRequest},
		{name: "empty cart", mutate: func(r *api.CreateOrderRequest) { r.Items = nil }, wantStatus: http.StatusBadRequest},
		{name: "malformed postal code", mutate: func(r *api.CreateOrderRequest) { r.DeliveryPostalCode = "40511" }, wantStatus: http.StatusBadRequest},
		{name: "bad token", mutate: func(*api.CreateOrderRequest) {}, token: "garbage", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := orderRequest()
			tt.mutate(&req)

			rec := srv.do(t, http.MethodPost, "/api/orders", req, tt.token)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestStatusHandlers(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	placed, err := srv.svc.Create(ctx, &customer, orderRequest())
	require.NoError(t, err)

	ownerToken := srv.token(t, owner)
	driverToken := srv.token(t, driver)
	statusPath := "/api/orders/" + placed.ID + "/status"

	t.Run("requires a token", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/orders/"+placed.ID, nil, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("drivers cannot change restaurant statuses", func(t *testing.T) {
		rec := srv.do(t, http.MethodPatch, statusPath, api.UpdateStatusRequest{Status: orders.StatusConfirmed}, driverToken)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := srv.do(t, http.MethodPatch, statusPath, map[string]string{"status": "cooking"}, ownerToken)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("skipping ahead conflicts", func(t *testing.T) {
		rec := srv.do(t, http.MethodPatch, statusPath, api.UpdateStatusRequest{Status: orders.StatusPreparing}, ownerToken)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, decode[api.ErrorResponse](t, rec).Error, "allowed: confirmed, cancelled")
	})

	t.Run("restaurant walks the order to ready", func(t *testing.T) {
		for _, to := range []orders.Status{orders.StatusConfirmed, orders.StatusPreparing, orders.StatusReadyForPickup} {
			rec := srv.do(t, http.MethodPatch, statusPath, api.UpdateStatusRequest{Status: to}, ownerToken)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, to, decode[orders.Order](t, rec).Status)
		}
	})

	t.Run("restaurant list shows the pickup code", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/restaurants/"+demoRestaurantID+"/orders", nil, ownerToken)

		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]orders.Order](t, rec)
		require.Len(t, list, 1)
		assert.Len(t, list[0].PickupCode, 4)
		assert.Empty(t, list[0].DeliveryCode)
	})

	t.Run("driver accepts", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/drivers/available-orders", nil, driverToken)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decode[[]orders.Order](t, rec), 1)

		rec = srv.do(t, http.MethodPost, "/api/drivers/"+driver.ID+"/orders/"+placed.ID+"/accept", nil, driverToken)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, decode[orders.Order](t, rec).IsAssignedTo(driver.ID))
	})

	t.Run("second accept conflicts", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/drivers/"+otherDriver.ID+"/orders/"+placed.ID+"/accept", nil, srv.token(t, otherDriver))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("wrong pickup code", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/orders/"+placed.ID+"/confirm-pickup",
			api.ConfirmPickupRequest{PickupCode: "abcd"}, driverToken)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("someone else's earnings", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/drivers/"+driver.ID+"/earnings", nil, srv.token(t, otherDriver))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/orders/does-not-exist", nil, ownerToken)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthCheckHandler(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/healthz", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, healthgo.StatusOK, decode[healthgo.Check](t, rec).Status)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{orders.ErrNotAssignedDriver, http.StatusForbidden},
		{orders.ErrCodeMismatch, http.StatusUnprocessableEntity},
		{orders.ErrInvalidTransition, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrUndeliverable, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
