package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar/internal/app"
	iauth "github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/database/testutil"
	"github.com/bazaarhq/bazaar/internal/monitoring"
)

type silentNotifier struct{}

func (silentNotifier) SendVerificationCode(context.Context, string, string) bool { return true }

func newTestDependencies(t *testing.T) Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret", Issuer: "test", AccessTokenTTL: time.Minute})
	require.NoError(t, err)

	return Dependencies{
		DB: db,
		Config: &app.Config{
			Monitoring: app.MonitoringConfig{
				Prometheus: app.PrometheusConfig{Enabled: true},
				Health:     app.HealthConfig{Enabled: true},
			},
		},
		JWT:      jwtSvc,
		Notifier: silentNotifier{},
		Health:   monitoring.NewHealthManager(),
	}
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	deps := newTestDependencies(t)

	missingDB := deps
	missingDB.DB = nil
	_, err := NewRouter(missingDB)
	require.Error(t, err)

	missingNotifier := deps
	missingNotifier.Notifier = nil
	_, err = NewRouter(missingNotifier)
	require.Error(t, err)
}

func TestRouterPublicRoutes(t *testing.T) {
	router, err := NewRouter(newTestDependencies(t))
	require.NoError(t, err)

	rec := serve(router, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(router, http.MethodGet, "/api/unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, err := NewRouter(newTestDependencies(t))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health").Code)

	rec := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "bazaar_api_latency_seconds"))
}

func TestRouterDisabledHealthAndMetrics(t *testing.T) {
	deps := newTestDependencies(t)
	deps.Config.Monitoring = app.MonitoringConfig{}

	router, err := NewRouter(deps)
	require.NoError(t, err)

	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/health/ready").Code)
	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/metrics").Code)
}
