package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/auth"
)

const writeWait = 10 * time.Second

var errOtherRestaurant = errors.New("restaurant accounts only see their own orders")

type MainHandler struct {
	feed      LiveOrderFeed
	health    *healthgo.Health
	upgrader  websocket.Upgrader
	heartbeat time.Duration
}

func NewMainHandler(
	e *echo.Echo,
	settings *Settings,
	feed LiveOrderFeed,
	authenticator *auth.Authenticator,
	health *healthgo.Health,
) *MainHandler {
	logger := slog.Default()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware(settings.App.Name,
		otelecho.WithMetricAttributeFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("client.ip", r.RemoteAddr),
				attribute.String("user.agent", r.UserAgent()),
			}
		}),
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	origins := settings.HTTP.CORS.Origins
	handler := &MainHandler{
		feed:      feed,
		health:    health,
		heartbeat: settings.Radar.Heartbeat(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, origin)
			},
		},
	}

	e.GET("/healthz", handler.HealthCheck)

	v1 := e.Group(settings.HTTP.Prefix,
		tokenFromQuery,
		authenticator.Middleware(),
		auth.RequireRole(api.RoleRestaurant, api.RoleAdmin),
	)
	v1.GET("/orders/sse", handler.GetLiveOrdersSSE)
	v1.GET("/orders/ws", handler.GetLiveOrdersWS)

	return handler
}

// tokenFromQuery accepts the token as ?access_token= because browsers cannot
// set headers on EventSource and WebSocket requests.
func tokenFromQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if token := c.QueryParam("access_token"); token != "" && req.Header.Get(echo.HeaderAuthorization) == "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		return next(c)
	}
}

// scope resolves which restaurant the caller may watch. An empty result means
// every restaurant and is only granted to admins.
func scope(c echo.Context) (string, error) {
	user, _ := auth.UserFrom(c)
	requested := c.QueryParam("restaurantId")
	if user.Role == api.RoleAdmin {
		return requested, nil
	}
	if requested != "" && requested != user.RestaurantID {
		return "", errOtherRestaurant
	}
	return user.RestaurantID, nil
}

// GetLiveOrdersSSE godoc
//
// @Summary Stream order events via Server-Sent Events (SSE)
// @Tags order
// @Produce text/event-stream
// @Param restaurantId query string false "Restaurant to watch, admins may omit it to watch all"
// @Success 200 {object} orders.Event
// @Failure 401 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Security Bearer
// @Router /v1/orders/sse [get]
func (h *MainHandler) GetLiveOrdersSSE(c echo.Context) error {
	ctx := c.Request().Context()
	restaurantID, err := scope(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		slog.ErrorContext(ctx, "streaming unsupported by response writer")
		return echo.NewHTTPError(http.StatusInternalServerError, "Streaming unsupported")
	}

	sub := h.feed.Subscribe(ctx, restaurantID)
	defer h.feed.Unsubscribe(ctx, sub)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "client closed connection")
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				slog.ErrorContext(ctx, "write SSE heartbeat", slog.Any("err", err))
				return nil
			}
			flusher.Flush()
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.ErrorContext(ctx, "marshal order event for SSE", slog.Any("err", err))
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: order\ndata: %s\n\n", event.ID, data); err != nil {
				slog.ErrorContext(ctx, "write SSE", slog.Any("err", err))
				return nil
			}
			flusher.Flush()
		}
	}
}

// GetLiveOrdersWS godoc
//
// @Summary Stream order events over a WebSocket
// @Tags order
// @Param restaurantId query string false "Restaurant to watch, admins may omit it to watch all"
// @Success 101 {object} orders.Event
// @Failure 401 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Security Bearer
// @Router /v1/orders/ws [get]
func (h *MainHandler) GetLiveOrdersWS(c echo.Context) error {
	ctx := c.Request().Context()
	restaurantID, err := scope(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already answered the client.
		slog.WarnContext(ctx, "websocket upgrade failed", slog.Any("err", err))
		return nil
	}
	defer ws.Close()

	sub := h.feed.Subscribe(ctx, restaurantID)
	defer h.feed.Unsubscribe(ctx, sub)

	// Dashboards never send anything; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			slog.InfoContext(ctx, "client closed connection")
			return nil
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.WarnContext(ctx, "websocket ping failed", slog.Any("err", err))
				return nil
			}
		case event, ok := <-sub.Events():
			if !ok {
				err := ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
					time.Now().Add(writeWait))
				if err != nil {
					slog.WarnContext(ctx, "websocket close failed", slog.Any("err", err))
				}
				return nil
			}
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				slog.WarnContext(ctx, "set websocket write deadline", slog.Any("err", err))
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.WarnContext(ctx, "write websocket", slog.Any("err", err))
				return nil
			}
		}
	}
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
