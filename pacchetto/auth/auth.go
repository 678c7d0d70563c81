// Package auth issues and checks the bearer tokens shared by the services.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/taldoflemis/jollof/pacchetto"
	"github.com/taldoflemis/jollof/pacchetto/api"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

const userContextKey = "auth.user"

type claims struct {
	jwt.RegisteredClaims
	Email        string   `json:"email"`
	Name         string   `json:"name,omitempty"`
	Role         api.Role `json:"role"`
	RestaurantID string   `json:"rid,omitempty"`
}

type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(settings pacchetto.AuthSettings) *Authenticator {
	return &Authenticator{
		secret: []byte(settings.JWTSecret),
		issuer: settings.Issuer,
		ttl:    settings.TokenTTL(),
		now:    time.Now,
	}
}

// Issue signs a token for user.
func (a *Authenticator) Issue(user api.User) (api.LoginResponse, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		RestaurantID: user.RestaurantID,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return api.LoginResponse{}, err
	}
	return api.LoginResponse{AccessToken: signed, ExpiresAt: expiresAt, User: user}, nil
}

// Parse checks the signature, issuer and expiry of raw.
func (a *Authenticator) Parse(raw string) (api.User, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return api.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return api.User{
		ID:           c.Subject,
		Email:        c.Email,
		Name:         c.Name,
		Role:         c.Role,
		RestaurantID: c.RestaurantID,
	}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// user on the echo context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: ErrMissingToken.Error()})
			}

			user, err := a.Parse(raw)
			if err != nil {
				slog.WarnContext(ctx, "rejected bearer token", slog.Any("err", err))
				return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: ErrInvalidToken.Error()})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// OptionalMiddleware lets anonymous requests through but rejects a bad token.
func (a *Authenticator) OptionalMiddleware() echo.MiddlewareFunc {
	required := a.Middleware()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withUser := required(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return withUser(c)
		}
	}
}

// RequireRole lets only the given roles through. It must run after Middleware.
func RequireRole(roles ...api.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFrom(c)
			if !ok || !slices.Contains(roles, user.Role) {
				return c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "forbidden"})
			}
			return next(c)
		}
	}
}

func UserFrom(c echo.Context) (api.User, bool) {
	user, ok := c.Get(userContextKey).(api.User)
	return user, ok
}
