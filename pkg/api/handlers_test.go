package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/ssargent/m64kit/pkg/catalog"
	"github.com/ssargent/m64kit/pkg/m64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cat, err := catalog.Open(catalog.Options{Dir: t.TempDir(), Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	config := ServerConfig{APIKey: "test-key", MaxUploadSize: 1 << 20}
	return NewServer(cat, config, NewMetrics(prometheus.NewRegistry()), zerolog.Nop())
}

func encodeTestMovie(t *testing.T, frames int) []byte {
	t.Helper()
	m := m64.NewMovie()
	require.NoError(t, m.Header.RomInternalName.Set("SUPER MARIO 64"))
	require.NoError(t, m.Header.Author.Set("tester"))
	m.Header.InputFrames = uint32(frames)
	m.Header.VIFrames = uint32(frames * 2)
	for i := 0; i < frames; i++ {
		m.Inputs = append(m.Inputs, m64.Input{A: true, X: int8(i)})
	}
	data, err := m64.Encode(m)
	require.NoError(t, err)
	return data
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data interface{}) APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

func addTestMovie(t *testing.T, server *Server, frames int) *catalog.Entry {
	t.Helper()
	req := httptest.NewRequest("POST", "/movies?name=run.m64", bytes.NewReader(encodeTestMovie(t, frames)))
	w := httptest.NewRecorder()
	server.handleAddMovie(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var entry catalog.Entry
	resp := decodeResponse(t, w, &entry)
	require.True(t, resp.Success)
	return &entry
}

func TestServer_handleHealth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	server.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var data map[string]string
	resp := decodeResponse(t, w, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", data["status"])
}

func TestServer_handleDecode(t *testing.T) {
	server := setupTestServer(t)

	t.Run("valid movie", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/decode?inputs=true", bytes.NewReader(encodeTestMovie(t, 3)))
		w := httptest.NewRecorder()
		server.handleDecode(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var data DecodeResponse
		resp := decodeResponse(t, w, &data)
		assert.True(t, resp.Success)
		assert.Equal(t, "SUPER MARIO 64", data.Summary.RomName)
		assert.Equal(t, "tester", data.Summary.Author)
		assert.Nil(t, data.Header)
		require.Len(t, data.Inputs, 3)
		assert.Equal(t, int8(2), data.Inputs[2].X)
	})

	t.Run("with header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/decode?header=1", bytes.NewReader(encodeTestMovie(t, 1)))
		w := httptest.NewRecorder()
		server.handleDecode(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"movie_start_type":"power-on"`)
	})

	testCases := []struct {
		name   string
		body   func() []byte
		kind   string
		field  string
		offset int
	}{
		{
			name:   "bad signature",
			body:   func() []byte { return []byte{0xFF, 0xFF, 0xFF, 0xFF} },
			kind:   "invalid_signature",
			offset: 0,
		},
		{
			name: "bad version",
			body: func() []byte {
				data := encodeTestMovie(t, 0)
				data[4] = 4
				return data
			},
			kind:   "invalid_version",
			offset: 4,
		},
		{
			name:   "truncated header",
			body:   func() []byte { return encodeTestMovie(t, 0)[:0x130] },
			kind:   "not_enough_bytes",
			field:  "VideoPlugin",
			offset: 0x122,
		},
		{
			name:   "misaligned inputs",
			body:   func() []byte { return append(encodeTestMovie(t, 1), 0) },
			kind:   "misaligned_input",
			offset: m64.HeaderSize + m64.InputSize,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/decode", bytes.NewReader(tc.body()))
			w := httptest.NewRecorder()
			server.handleDecode(w, req)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			var detail DecodeErrorDetail
			resp := decodeResponse(t, w, &detail)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tc.kind, detail.Kind)
			assert.Equal(t, tc.field, detail.Field)
			assert.Equal(t, tc.offset, detail.Offset)
		})
	}
}

func TestServer_handleDecode_TooLarge(t *testing.T) {
	server := setupTestServer(t)
	server.config.MaxUploadSize = 2048

	req := httptest.NewRequest("POST", "/decode", bytes.NewReader(encodeTestMovie(t, 1000)))
	w := httptest.NewRecorder()
	server.handleDecode(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_handleAddMovie(t *testing.T) {
	server := setupTestServer(t)

	entry := addTestMovie(t, server, 4)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "run.m64", entry.Name)
	assert.Equal(t, 4, entry.Summary.Samples)

	t.Run("invalid movie is not stored", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/movies", strings.NewReader("garbage"))
		w := httptest.NewRecorder()
		server.handleAddMovie(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		entries, err := server.catalog.List()
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestServer_handleListMovies(t *testing.T) {
	server := setupTestServer(t)

	t.Run("empty catalog", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.handleListMovies(w, httptest.NewRequest("GET", "/movies", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	addTestMovie(t, server, 1)
	addTestMovie(t, server, 2)

	w := httptest.NewRecorder()
	server.handleListMovies(w, httptest.NewRequest("GET", "/movies", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var entries []catalog.Entry
	decodeResponse(t, w, &entries)
	assert.Len(t, entries, 2)
}

func TestServer_handleGetMovie(t *testing.T) {
	server := setupTestServer(t)
	entry := addTestMovie(t, server, 2)

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{name: "existing", id: entry.ID, expectedStatus: http.StatusOK},
		{name: "malformed id", id: "not-an-id", expectedStatus: http.StatusBadRequest},
		{name: "unknown id", id: "0ujtsYcgvSTl8PAuAdqWYSMnLOv", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest("GET", "/movies/"+tt.id, nil), "id", tt.id)
			w := httptest.NewRecorder()
			server.handleGetMovie(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestServer_handleGetRaw(t *testing.T) {
	server := setupTestServer(t)
	entry := addTestMovie(t, server, 3)

	req := withURLParam(httptest.NewRequest("GET", "/movies/"+entry.ID+"/raw", nil), "id", entry.ID)
	w := httptest.NewRecorder()
	server.handleGetRaw(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), entry.ID+".m64")
	assert.Equal(t, encodeTestMovie(t, 3), w.Body.Bytes())
}

func TestServer_handleGetInputs(t *testing.T) {
	server := setupTestServer(t)
	entry := addTestMovie(t, server, 10)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
		firstX         int8
	}{
		{name: "default window", query: "", expectedStatus: http.StatusOK, expectedCount: 10},
		{name: "offset and limit", query: "?offset=5&limit=2", expectedStatus: http.StatusOK, expectedCount: 2, firstX: 5},
		{name: "negative offset", query: "?offset=-1", expectedStatus: http.StatusBadRequest},
		{name: "zero limit", query: "?limit=0", expectedStatus: http.StatusBadRequest},
		{name: "non-numeric limit", query: "?limit=abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest("GET", "/movies/"+entry.ID+"/inputs"+tt.query, nil), "id", entry.ID)
			w := httptest.NewRecorder()
			server.handleGetInputs(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var page catalog.InputPage
			decodeResponse(t, w, &page)
			assert.Equal(t, 10, page.Total)
			require.Len(t, page.Inputs, tt.expectedCount)
			assert.Equal(t, tt.firstX, page.Inputs[0].X)
		})
	}
}

func TestServer_handleDeleteMovie(t *testing.T) {
	server := setupTestServer(t)
	entry := addTestMovie(t, server, 1)

	req := withURLParam(httptest.NewRequest("DELETE", "/movies/"+entry.ID, nil), "id", entry.ID)
	w := httptest.NewRecorder()
	server.handleDeleteMovie(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = withURLParam(httptest.NewRequest("DELETE", "/movies/"+entry.ID, nil), "id", entry.ID)
	w = httptest.NewRecorder()
	server.handleDeleteMovie(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
