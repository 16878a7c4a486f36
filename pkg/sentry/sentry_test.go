package sentry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"movieapi/pkg/config"

	sentrygo "github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetEnabled(t *testing.T) {
	t.Helper()
	previous := enabled
	t.Cleanup(func() { enabled = previous })
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		enabled bool
	}{
		{name: "local environment stays off", cfg: config.Config{AppEnv: "local", SentryDSN: "https://public@sentry.example.com/1"}},
		{name: "empty DSN stays off", cfg: config.Config{AppEnv: "production"}},
		{name: "DSN outside local turns reporting on", cfg: config.Config{AppEnv: "production", SentryDSN: "https://public@sentry.example.com/1"}, enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetEnabled(t)
			// environment variables are not consulted
			t.Setenv("APP_ENV", "production")
			t.Setenv("SENTRY_DSN", "https://env@sentry.example.com/2")

			require.NoError(t, Init(&tt.cfg))

			assert.Equal(t, tt.enabled, enabled)
		})
	}
}

func TestSentry_SendingBehavior(t *testing.T) {
	t.Run("does nothing when disabled", func(t *testing.T) {
		resetEnabled(t)
		require.NoError(t, Init(&config.Config{AppEnv: "local"}))

		// Should not panic
		WithContext(nil).WithTags(map[string]string{"route": "/api/movies"}).Error(errors.New("test"))
		Warningf("unknown locale %q", "xx")
	})

	t.Run("sends error and message when configured", func(t *testing.T) {
		resetEnabled(t)
		defer sentrygo.Flush(0)
		require.NoError(t, Init(&config.Config{AppEnv: "production", SentryDSN: "https://public@sentry.example.com/1"}))

		WithContext(nil).WithTags(map[string]string{"env": "test"}).Error(errors.New("storage down"))
		Warningf("warning: %s", "test")
	})

	t.Run("fatal flushes without exiting", func(t *testing.T) {
		resetEnabled(t)
		enabled = false
		originalFlushTime := FlushTime
		FlushTime = 0
		defer func() { FlushTime = originalFlushTime }()

		Fatal(errors.New("fatal error"))
	})
}

func TestSentry_GetHub(t *testing.T) {
	t.Run("returns current hub when no context", func(t *testing.T) {
		assert.Equal(t, sentrygo.CurrentHub(), new(Sentry).getHub())
	})

	t.Run("returns request hub set by middleware", func(t *testing.T) {
		e := echo.New()
		e.Use(sentryecho.New(sentryecho.Options{}))
		var got *sentrygo.Hub
		e.GET("/", func(c echo.Context) error {
			got = WithContext(c).getHub()
			return c.NoContent(http.StatusOK)
		})

		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotNil(t, got)
		assert.NotSame(t, sentrygo.CurrentHub(), got)
	})
}

func TestSentry_ConfigScope(t *testing.T) {
	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/movies/2", nil), httptest.NewRecorder())
	tags := map[string]string{"route": "/api/movies/:id"}
	s := WithContext(ctx).WithTags(tags)
	s.level = sentrygo.LevelError

	scope := sentrygo.NewScope()
	s.configScope(scope)

	assert.Equal(t, ctx, s.context)
	assert.Equal(t, tags, s.tags)
}
