package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar/internal/handlers/testutil"
)

func TestHealthHandler_Endpoints(t *testing.T) {
	env := testutil.NewEnv(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := env.Request(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path+": "+w.Body.String())
		require.Contains(t, w.Body.String(), `"status":"up"`)
	}

	w := env.Request(http.MethodGet, "/health/ready", nil)
	require.Contains(t, w.Body.String(), `"component":"database"`)
}
