package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taldoflemis/jollof/pacchetto"
	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/auth"
	"github.com/taldoflemis/jollof/pacchetto/fees"
	"github.com/taldoflemis/jollof/pacchetto/orders"
)

type echoValidator struct {
	validate *validator.Validate
}

func (v *echoValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

type MainHandler struct {
	orders *OrderService
	login  *LoginService
	health *healthgo.Health
}

func NewMainHandler(
	e *echo.Echo,
	settings *Settings,
	orderService *OrderService,
	loginService *LoginService,
	authenticator *auth.Authenticator,
	health *healthgo.Health,
) *MainHandler {
	logger := slog.Default()
	e.HideBanner = true
	e.Validator = &echoValidator{validate: pacchetto.NewValidator()}
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware(settings.App.Name,
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	h := &MainHandler{
		orders: orderService,
		login:  loginService,
		health: health,
	}

	e.GET("/healthz", h.HealthCheck)

	public := e.Group(settings.HTTP.Prefix)
	public.POST("/auth/login", h.Login)
	public.POST("/validate-address", h.ValidateAddress)
	public.POST("/orders", h.CreateOrder, authenticator.OptionalMiddleware())

	private := e.Group(settings.HTTP.Prefix, authenticator.Middleware())
	private.GET("/orders/:id", h.GetOrder)
	private.PATCH("/orders/:id/status", h.UpdateOrderStatus, auth.RequireRole(api.RoleRestaurant))
	private.POST("/orders/:id/confirm-pickup", h.ConfirmPickup, auth.RequireRole(api.RoleDriver))
	private.POST("/orders/:id/confirm-delivery", h.ConfirmDelivery, auth.RequireRole(api.RoleDriver))
	private.GET("/restaurants/:id/orders", h.ListRestaurantOrders, auth.RequireRole(api.RoleRestaurant, api.RoleAdmin))
	private.GET("/drivers/available-orders", h.ListAvailableOrders, auth.RequireRole(api.RoleDriver))
	private.GET("/drivers/:id/orders", h.ListDriverOrders, auth.RequireRole(api.RoleDriver, api.RoleAdmin))
	private.POST("/drivers/:id/orders/:orderId/accept", h.AcceptOrder, auth.RequireRole(api.RoleDriver))
	private.GET("/drivers/:id/earnings", h.DriverEarnings, auth.RequireRole(api.RoleDriver, api.RoleAdmin))

	return h
}

// Login godoc
//
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body api.LoginRequest true "Credentials"
// @Success 200 {object} api.LoginResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /api/auth/login [post]
func (h *MainHandler) Login(c echo.Context) error {
	var req api.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	res, err := h.login.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ValidateAddress godoc
//
// @Summary Check an address and quote its delivery fee
// @Tags address
// @Accept json
// @Produce json
// @Param address body fees.Address true "Address"
// @Success 200 {object} fees.Validation
// @Failure 400 {object} api.ErrorResponse
// @Router /api/validate-address [post]
func (h *MainHandler) ValidateAddress(c echo.Context) error {
	var addr fees.Address
	if err := c.Bind(&addr); err != nil {
		return h.fail(c, fmt.Errorf("%w: %w", errInvalidRequest, err))
	}
	return c.JSON(http.StatusOK, ValidateAddress(addr))
}

// CreateOrder godoc
//
// @Summary Place an order
// @Description Signed-in customers order on their account, anyone else must send guest details.
// @Tags order
// @Accept json
// @Produce json
// @Param order body api.CreateOrderRequest true "Order"
// @Success 201 {object} orders.Order
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/orders [post]
func (h *MainHandler) CreateOrder(c echo.Context) error {
	var req api.CreateOrderRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	var user *api.User
	if u, ok := auth.UserFrom(c); ok {
		user = &u
	}

	o, err := h.orders.Create(c.Request().Context(), user, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// GetOrder godoc
//
// @Summary Get an order
// @Tags order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} orders.Order
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/orders/{id} [get]
func (h *MainHandler) GetOrder(c echo.Context) error {
	user, _ := auth.UserFrom(c)
	o, err := h.orders.Get(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateOrderStatus godoc
//
// @Summary Move an order to its next status
// @Tags order
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body api.UpdateStatusRequest true "Target status"
// @Success 200 {object} orders.Order
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/orders/{id}/status [patch]
func (h *MainHandler) UpdateOrderStatus(c echo.Context) error {
	var req api.UpdateStatusRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, _ := auth.UserFrom(c)
	o, err := h.orders.UpdateStatus(c.Request().Context(), user, c.Param("id"), req.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ConfirmPickup godoc
//
// @Summary Confirm the pickup with the restaurant's code
// @Tags driver
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param code body api.ConfirmPickupRequest true "Pickup code"
// @Success 200 {object} orders.Order
// @Failure 409 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/orders/{id}/confirm-pickup [post]
func (h *MainHandler) ConfirmPickup(c echo.Context) error {
	var req api.ConfirmPickupRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, _ := auth.UserFrom(c)
	o, err := h.orders.ConfirmPickup(c.Request().Context(), user, c.Param("id"), req.PickupCode)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ConfirmDelivery godoc
//
// @Summary Confirm the delivery with the customer's code
// @Tags driver
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param code body api.ConfirmDeliveryRequest true "Delivery code"
// @Success 200 {object} orders.Order
// @Failure 409 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/orders/{id}/confirm-delivery [post]
func (h *MainHandler) ConfirmDelivery(c echo.Context) error {
	var req api.ConfirmDeliveryRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	user, _ := auth.UserFrom(c)
	o, err := h.orders.ConfirmDelivery(c.Request().Context(), user, c.Param("id"), req.DeliveryCode)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ListRestaurantOrders godoc
//
// @Summary List the orders of a restaurant
// @Tags restaurant
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {array} orders.Order
// @Failure 403 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/restaurants/{id}/orders [get]
func (h *MainHandler) ListRestaurantOrders(c echo.Context) error {
	user, _ := auth.UserFrom(c)
	list, err := h.orders.ListRestaurantOrders(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListAvailableOrders godoc
//
// @Summary List orders waiting for a driver
// @Tags driver
// @Produce json
// @Success 200 {array} orders.Order
// @Security Bearer
// @Router /api/drivers/available-orders [get]
func (h *MainHandler) ListAvailableOrders(c echo.Context) error {
	user, _ := auth.UserFrom(c)
	list, err := h.orders.ListAvailableOrders(c.Request().Context(), user)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListDriverOrders godoc
//
// @Summary List the orders of a driver
// @Tags driver
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {array} orders.Order
// @Failure 403 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/drivers/{id}/orders [get]
func (h *MainHandler) ListDriverOrders(c echo.Context) error {
	user, _ := auth.UserFrom(c)
	list, err := h.orders.ListDriverOrders(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// AcceptOrder godoc
//
// @Summary Accept a ready order
// @Tags driver
// @Produce json
// @Param id path string true "Driver ID"
// @Param orderId path string true "Order ID"
// @Success 200 {object} orders.Order
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/drivers/{id}/orders/{orderId}/accept [post]
func (h *MainHandler) AcceptOrder(c echo.Context) error {
	user, _ := auth.UserFrom(c)
	o, err := h.orders.Accept(c.Request().Context(), user, c.Param("id"), c.Param("orderId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// DriverEarnings godoc
//
// @Summary Commission earned by a driver
// @Tags driver
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} orders.Earnings
// @Failure 403 {object} api.ErrorResponse
// @Security Bearer
// @Router /api/drivers/{id}/earnings [get]
func (h *MainHandler) DriverEarnings(c echo.Context) error {
	user, _ := auth.UserFrom(c)
	e, err := h.orders.Earnings(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}

var errInvalidRequest = errors.New("invalid request")

func (h *MainHandler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}

func (h *MainHandler) fail(c echo.Context, err error) error {
	ctx := c.Request().Context()
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", slog.String("path", c.Path()), slog.Any("err", err))
		return c.JSON(status, api.ErrorResponse{Error: "internal error"})
	}
	slog.InfoContext(ctx, "request refused", slog.String("path", c.Path()), slog.Int("status", status), slog.Any("err", err))
	return c.JSON(status, api.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, orders.ErrNotAssignedDriver):
		return http.StatusForbidden
	case errors.Is(err, orders.ErrCodeMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, ErrGuestRequired),
		errors.Is(err, ErrUnknownMenuItem),
		errors.Is(err, ErrUndeliverable),
		errors.Is(err, orders.ErrDriverRequired),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
