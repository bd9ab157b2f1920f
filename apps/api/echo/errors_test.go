package echoapi

import (
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
)

type noopLogger struct{}

func (noopLogger) Enable(bool)                  {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func Test_appHTTPErrorHandler_shutdown(t *testing.T) {
	app := echo.New()
	_, translator := core.NewValidator()

	serve := func(t *testing.T, signalShutdown func(), err error) *httptest.ResponseRecorder {
		t.Helper()
		handler := newAppHTTPErrorHandler(noopLogger{}, translator, signalShutdown)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler(err, app.NewContext(req, rec))
		return rec
	}

	t.Run("integrity loss requests a shutdown", func(t *testing.T) {
		var signaled bool
		err := errors.Wrap(core.NewShutdownError("database integrity lost"), "querying activities")

		rec := serve(t, func() { signaled = true }, err)

		if !signaled {
			t.Error("expected the shutdown signal to fire")
		}
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusInternalServerError)
		}
	})

	t.Run("ordinary server errors do not", func(t *testing.T) {
		var signaled bool

		rec := serve(t, func() { signaled = true }, errors.New("boom"))

		if signaled {
			t.Error("shutdown signal fired for an ordinary error")
		}
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_server_signalShutdown(t *testing.T) {
	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Student Smart Hub",
		SecretKey: "test-secret-key",
		Server:    core.ServerConfig{JWTExpirationDelta: 10 * time.Minute},
	}
	validate, translator := core.NewValidator()

	srv := NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         noopLogger{},
		Validate:       validate,
		Translator:     translator,
	}).(*server)

	srv.signalShutdown()

	select {
	case sig := <-srv.ShutdownSignal():
		if sig != syscall.SIGTERM {
			t.Errorf("signal = %v; want %v", sig, syscall.SIGTERM)
		}
	default:
		t.Fatal("expected a pending shutdown signal")
	}
}
