package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	server := setupTestServer(t)
	reg := NewRegistry()
	server.metrics = NewMetrics(reg)
	return server.Routes(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func TestRoutes_Authentication(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name           string
		key            string
		expectedStatus int
	}{
		{name: "valid key", key: "test-key", expectedStatus: http.StatusOK},
		{name: "missing key", key: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong key", key: "nope", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRoutes_MovieLifecycle(t *testing.T) {
	router := newTestRouter(t)
	data := encodeTestMovie(t, 5)

	do := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("X-API-Key", "test-key")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do("POST", "/api/v1/movies?name=lifecycle.m64", data)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	id := created.Data.ID
	require.NotEmpty(t, id)

	w = do("GET", "/api/v1/movies/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifecycle.m64")

	w = do("GET", "/api/v1/movies/"+id+"/raw", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data, w.Body.Bytes())

	w = do("GET", "/api/v1/movies/"+id+"/inputs?offset=1&limit=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do("DELETE", "/api/v1/movies/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do("GET", "/api/v1/movies/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_MetricsAndSwagger(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/decode", bytes.NewReader([]byte("junk")))
	req.Header.Set("X-API-Key", "test-key")
	router.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `m64_decodes_total{result="invalid_signature"} 1`)
	assert.Contains(t, body, "m64_http_requests_total")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/swagger.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc["basePath"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/other", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServe_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, handler, zerolog.Nop())
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
