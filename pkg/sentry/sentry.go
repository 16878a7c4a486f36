// Package sentry reports errors and messages to Sentry. Nothing is sent
// unless Init ran with a DSN outside the local environment.
package sentry

import (
	"fmt"
	"time"

	"movieapi/pkg/config"

	sentrygo "github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// FlushTime bounds how long Fatal waits for buffered events.
var FlushTime = 2 * time.Second

var enabled bool

// Init configures the global client from cfg. Reporting stays off when
// APP_ENV is "local" or SENTRY_DSN is empty.
func Init(cfg *config.Config) error {
	enabled = cfg.AppEnv != "local" && cfg.SentryDSN != ""
	if !enabled {
		return nil
	}
	return sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
}

type Sentry struct {
	context echo.Context
	error   error
	message string
	level   sentrygo.Level
	tags    map[string]string
}

func WithContext(c echo.Context) *Sentry {
	return &Sentry{context: c}
}

func (s *Sentry) WithTags(tags map[string]string) *Sentry {
	s.tags = tags
	return s
}

func (s *Sentry) Error(err error) {
	s.error = err
	s.level = sentrygo.LevelError
	s.sendError()
}

// Fatal reports err and waits up to FlushTime for delivery. It does not exit.
func (s *Sentry) Fatal(err error) {
	s.error = err
	s.level = sentrygo.LevelFatal
	s.sendError()
	sentrygo.Flush(FlushTime)
}

func Warningf(format string, args ...interface{}) {
	s := &Sentry{message: fmt.Sprintf(format, args...), level: sentrygo.LevelWarning}
	s.sendMessage()
}

func Fatal(err error) {
	new(Sentry).Fatal(err)
}

func (s *Sentry) sendError() {
	if !enabled || s.error == nil {
		return
	}
	hub := s.getHub()
	hub.WithScope(func(scope *sentrygo.Scope) {
		s.configScope(scope)
		hub.CaptureException(s.error)
	})
}

func (s *Sentry) sendMessage() {
	if !enabled || s.message == "" {
		return
	}
	hub := s.getHub()
	hub.WithScope(func(scope *sentrygo.Scope) {
		s.configScope(scope)
		hub.CaptureMessage(s.message)
	})
}

// getHub prefers the request hub installed by the sentryecho middleware.
func (s *Sentry) getHub() *sentrygo.Hub {
	if s.context != nil {
		if hub := sentryecho.GetHubFromContext(s.context); hub != nil {
			return hub
		}
	}
	return sentrygo.CurrentHub()
}

func (s *Sentry) configScope(scope *sentrygo.Scope) {
	if s.level != "" {
		scope.SetLevel(s.level)
	}
	if len(s.tags) > 0 {
		scope.SetTags(s.tags)
	}
	if s.context != nil && s.context.Request() != nil {
		scope.SetRequest(s.context.Request())
	}
}
