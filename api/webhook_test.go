package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/govorun/pkg/metrics"
	"github.com/valpere/govorun/tests/fixtures"
	"github.com/valpere/govorun/tests/helpers"
)

func newTestRouter(t *testing.T) (*httptest.Server, *helpers.MockBot) {
	t.Helper()

	mockBot := helpers.NewMockBot()
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{})
	logger := helpers.NewSilentTestLogger()

	router := NewRouter(mockBot.Bot, dispatcher, metrics.New(), *logger)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, mockBot
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestRouter(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestRouter(t)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhook(t *testing.T) {
	t.Run("rejects wrong token", func(t *testing.T) {
		server, _ := newTestRouter(t)

		resp, err := http.Post(server.URL+"/webhook/wrong_token", "application/json",
			bytes.NewBufferString("{}"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		server, _ := newTestRouter(t)

		resp, err := http.Post(server.URL+"/webhook/test_token", "application/json",
			bytes.NewBufferString("{not json"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("accepts a valid update", func(t *testing.T) {
		server, _ := newTestRouter(t)

		update := fixtures.BuildCommandUpdate("/start")
		body, err := json.Marshal(update)
		require.NoError(t, err)

		resp, err := http.Post(server.URL+"/webhook/test_token", "application/json",
			bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
