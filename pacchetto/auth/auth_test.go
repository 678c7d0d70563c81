package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taldoflemis/jollof/pacchetto"
	"github.com/taldoflemis/jollof/pacchetto/api"
)

var settings = pacchetto.AuthSettings{
	JWTSecret:         "a-very-long-test-secret",
	TokenTTLInMinutes: 60,
	Issuer:            "jollof-test",
}

var owner = api.User{ID: "u-1", Email: "chef@jollof.ch", Name: "Chef", Role: api.RoleRestaurant, RestaurantID: "r-1"}

func TestIssueAndParse(t *testing.T) {
	a := NewAuthenticator(settings)

	res, err := a.Issue(owner)
	require.NoError(t, err)

	got, err := a.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestParseRejects(t *testing.T) {
	a := NewAuthenticator(settings)
	res, err := a.Issue(owner)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewAuthenticator(settings)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err := later.Parse(res.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := settings
		other.JWTSecret = "another-long-test-secret"

		_, err := NewAuthenticator(other).Parse(res.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := settings
		other.Issuer = "someone-else"

		_, err := NewAuthenticator(other).Parse(res.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := a.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator(settings)
	res, err := a.Issue(owner)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/owner", func(c echo.Context) error {
		user, _ := UserFrom(c)
		return c.String(http.StatusOK, user.RestaurantID)
	}, a.Middleware(), RequireRole(api.RoleRestaurant))
	e.GET("/driver", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, a.Middleware(), RequireRole(api.RoleDriver))

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/owner", "", http.StatusUnauthorized},
		{"bad token", "/owner", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/owner", "Basic " + res.AccessToken, http.StatusUnauthorized},
		{"right role", "/owner", "Bearer " + res.AccessToken, http.StatusOK},
		{"wrong role", "/driver", "Bearer " + res.AccessToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK && tt.path == "/owner" {
				assert.Equal(t, "r-1", rec.Body.String())
			}
		})
	}
}

func TestOptionalMiddleware(t *testing.T) {
	a := NewAuthenticator(settings)
	res, err := a.Issue(owner)
	require.NoError(t, err)

	e := echo.New()
	e.POST("/orders", func(c echo.Context) error {
		if user, ok := UserFrom(c); ok {
			return c.String(http.StatusOK, user.ID)
		}
		return c.String(http.StatusOK, "guest")
	}, a.OptionalMiddleware())

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "guest"},
		{"signed in", "Bearer " + res.AccessToken, http.StatusOK, "u-1"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/orders", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
