package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/api"
	"github.com/bazaarhq/bazaar/internal/app"
	iauth "github.com/bazaarhq/bazaar/internal/auth"
	sharedtestutil "github.com/bazaarhq/bazaar/internal/database/testutil"
	"github.com/bazaarhq/bazaar/internal/middleware"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/monitoring"
	"github.com/bazaarhq/bazaar/internal/monitoring/checks"
	"github.com/bazaarhq/bazaar/internal/services"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// Notifier records every verification code dispatched through it.
type Notifier struct {
	mu    sync.Mutex
	fail  bool
	codes map[string][]string
}

// SendVerificationCode stores the code and reports the configured outcome.
func (n *Notifier) SendVerificationCode(_ context.Context, email, code string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = make(map[string][]string)
	}
	n.codes[email] = append(n.codes[email], code)
	return !n.fail
}

// SetFailing toggles dispatch failure.
func (n *Notifier) SetFailing(fail bool) {
	n.mu.Lock()
	n.fail = fail
	n.mu.Unlock()
}

// LastCode returns the most recent code sent to email.
func (n *Notifier) LastCode(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	codes := n.codes[email]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

// Sent reports how many codes were sent to email.
func (n *Notifier) Sent(email string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.codes[email])
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	JWT      *iauth.JWTService
	Notifier *Notifier
	Config   *app.Config
}

// EnvOption adjusts the configuration before the router is built.
type EnvOption func(cfg *app.Config)

// WithRateLimit overrides the auth route rate limit.
func WithRateLimit(requests int, window time.Duration) EnvOption {
	return func(cfg *app.Config) {
		cfg.RateLimit.Requests = requests
		cfg.RateLimit.Window = window
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg := &app.Config{
		App: app.AppConfig{Name: "Bazaar"},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	health := monitoring.NewHealthManager()
	health.RegisterReadiness(checks.Database(db, time.Second))

	notifier := &Notifier{}
	router, err := api.NewRouter(api.Dependencies{
		DB:        db,
		Config:    cfg,
		JWT:       jwtSvc,
		Notifier:  notifier,
		Audit:     audit,
		Health:    health,
		RateStore: middleware.NewMemoryRateStore(),
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		JWT:      jwtSvc,
		Notifier: notifier,
		Config:   cfg,
	}
}

// Register submits a valid registration form for username and fails the test unless it succeeds.
func (e *Env) Register(username, email, password string) {
	e.T.Helper()

	payload := map[string]string{
		"username":         username,
		"email":            email,
		"password":         password,
		"confirm_password": password,
		"role":             "customer",
	}
	w := e.Request(http.MethodPost, "/api/auth/register", payload)
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())
}

// User loads the stored account for email.
func (e *Env) User(email string) models.User {
	e.T.Helper()
	var user models.User
	require.NoError(e.T, e.DB.Where("email = ?", email).Take(&user).Error)
	return user
}

// Result mirrors the account operation response body.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Email   string   `json:"email"`
}

// DecodeResult parses an account operation response.
func DecodeResult(t *testing.T, w *httptest.ResponseRecorder) Result {
	t.Helper()
	var result Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), w.Body.String())
	return result
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, JSON encoding body when set.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	return e.RawRequest(method, path, buf.Bytes())
}

// RawRequest sends body verbatim with a JSON content type.
func (e *Env) RawRequest(method, path string, body []byte) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(e.T, err)
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
