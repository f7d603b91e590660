package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/adapters/driving/httpapi"
)

func TestServeCmd_AddrFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestListenAddr(t *testing.T) {
	defer func() { serveAddr, serverAddr = "", "" }()

	assert.Equal(t, httpapi.DefaultAddr, listenAddr())

	serverAddr = "0.0.0.0:9000"
	assert.Equal(t, "0.0.0.0:9000", listenAddr())

	serveAddr = "127.0.0.1:7000"
	assert.Equal(t, "127.0.0.1:7000", listenAddr())
}

func TestHTTPPorts_ServeHealth(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	server, err := httpapi.NewServer(httpPorts())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_sessions":1`)
}

func TestServeCmd_ServiceNotConfigured(t *testing.T) {
	_, err := execute(t, "", "serve")

	assert.ErrorIs(t, err, httpapi.ErrMissingSessionService)
}
