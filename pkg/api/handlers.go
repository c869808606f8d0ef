package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/ssargent/m64kit/pkg/catalog"
	"github.com/ssargent/m64kit/pkg/m64"
)

const (
	defaultInputLimit = 1000
	maxInputLimit     = 100000
)

// Server holds the API server state
type Server struct {
	catalog MovieCatalog
	config  ServerConfig
	metrics *Metrics
	logger  zerolog.Logger
}

// NewServer creates a new API server
func NewServer(movies MovieCatalog, config ServerConfig, metrics *Metrics, logger zerolog.Logger) *Server {
	return &Server{
		catalog: movies,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleDecode godoc
//
//	@Summary		Decode a movie
//	@Description	Decode an uploaded .m64 file without storing it
//	@Tags			codec
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"Movie bytes"
//	@Param			header	query		bool	false	"Include the full header"
//	@Param			inputs	query		bool	false	"Include every input sample"
//	@Success		200		{object}	DecodeResponse
//	@Failure		413		{object}	APIResponse
//	@Failure		422		{object}	DecodeErrorDetail
//	@Security		ApiKeyAuth
//	@Router			/decode [post]
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	movie, err := s.catalog.Codec().Decode(body)
	if err != nil {
		s.sendDecodeFailure(w, err)
		return
	}
	s.metrics.RecordDecode("ok", len(body))

	resp := DecodeResponse{Summary: m64.Summarize(movie)}
	if queryBool(r, "header") {
		resp.Header = &movie.Header
	}
	if queryBool(r, "inputs") {
		resp.Inputs = movie.Inputs
	}
	sendSuccess(w, resp)
}

// handleAddMovie godoc
//
//	@Summary		Add a movie
//	@Description	Validate an uploaded .m64 file and store it in the catalog
//	@Tags			movies
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"Movie bytes"
//	@Param			name	query		string	false	"Display name"
//	@Success		201		{object}	catalog.Entry
//	@Failure		422		{object}	DecodeErrorDetail
//	@Failure		500		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/movies [post]
func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	entry, err := s.catalog.Add(r.URL.Query().Get("name"), body)
	s.metrics.RecordCatalogOperation("add", err == nil, time.Since(start))
	if err != nil {
		if _, isParse := m64.AsParseError(err); isParse {
			s.sendDecodeFailure(w, err)
			return
		}
		s.logger.Error().Err(err).Msg("failed to add movie")
		sendError(w, "Failed to store movie", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordDecode("ok", len(body))
	s.refreshCatalogStats()

	sendCreated(w, entry)
}

// handleListMovies godoc
//
//	@Summary		List movies
//	@Description	List every catalogued movie with its summary
//	@Tags			movies
//	@Produce		json
//	@Success		200	{array}		catalog.Entry
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/movies [get]
func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := s.catalog.List()
	s.metrics.RecordCatalogOperation("list", err == nil, time.Since(start))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list movies")
		sendError(w, "Failed to list movies", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*catalog.Entry{}
	}
	s.metrics.UpdateCatalogStats(len(entries))
	sendSuccess(w, entries)
}

// handleGetMovie godoc
//
//	@Summary		Get a movie
//	@Description	Get the catalog entry for a movie
//	@Tags			movies
//	@Produce		json
//	@Param			id	path		string	true	"Movie id"
//	@Success		200	{object}	catalog.Entry
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/movies/{id} [get]
func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry, err := s.catalog.Get(chi.URLParam(r, "id"))
	s.metrics.RecordCatalogOperation("get", err == nil, time.Since(start))
	if err != nil {
		s.sendCatalogError(w, err)
		return
	}
	sendSuccess(w, entry)
}

// handleGetRaw godoc
//
//	@Summary		Export a movie
//	@Description	Download the stored .m64 bytes exactly as they were added
//	@Tags			movies
//	@Produce		octet-stream
//	@Param			id	path		string	true	"Movie id"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/movies/{id}/raw [get]
func (s *Server) handleGetRaw(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start := time.Now()
	data, err := s.catalog.Raw(id)
	s.metrics.RecordCatalogOperation("export", err == nil, time.Since(start))
	if err != nil {
		s.sendCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".m64"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleGetInputs godoc
//
//	@Summary		Get input samples
//	@Description	Page through the input samples of a stored movie
//	@Tags			movies
//	@Produce		json
//	@Param			id		path		string	true	"Movie id"
//	@Param			offset	query		int		false	"First frame"
//	@Param			limit	query		int		false	"Maximum number of frames"
//	@Success		200		{object}	catalog.InputPage
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/movies/{id}/inputs [get]
func (s *Server) handleGetInputs(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		sendError(w, "Invalid offset parameter", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", defaultInputLimit)
	if err != nil || limit < 1 || limit > maxInputLimit {
		sendError(w, fmt.Sprintf("Invalid limit parameter, must be between 1 and %d", maxInputLimit), http.StatusBadRequest)
		return
	}

	start := time.Now()
	page, err := s.catalog.Inputs(chi.URLParam(r, "id"), offset, limit)
	s.metrics.RecordCatalogOperation("inputs", err == nil, time.Since(start))
	if err != nil {
		s.sendCatalogError(w, err)
		return
	}
	sendSuccess(w, page)
}

// handleDeleteMovie godoc
//
//	@Summary		Delete a movie
//	@Description	Remove a movie from the catalog
//	@Tags			movies
//	@Produce		json
//	@Param			id	path		string	true	"Movie id"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/movies/{id} [delete]
func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start := time.Now()
	err := s.catalog.Delete(id)
	s.metrics.RecordCatalogOperation("delete", err == nil, time.Since(start))
	if err != nil {
		s.sendCatalogError(w, err)
		return
	}
	s.refreshCatalogStats()

	sendSuccess(w, map[string]string{"message": "Movie deleted successfully", "id": id})
}

// readBody reads the request body up to the configured upload limit. On
// failure the response has already been written.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if s.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, fmt.Sprintf("Movie exceeds upload limit of %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (s *Server) sendDecodeFailure(w http.ResponseWriter, err error) {
	perr, ok := m64.AsParseError(err)
	if !ok {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordDecode(perr.Kind().String(), 0)
	s.logger.Debug().
		Str("kind", perr.Kind().String()).
		Int("offset", perr.ByteOffset()).
		Msg("rejected movie")
	sendDecodeError(w, perr)
}

func (s *Server) sendCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrNotFound):
		sendError(w, "Movie not found", http.StatusNotFound)
	default:
		s.logger.Error().Err(err).Msg("catalog operation failed")
		sendError(w, "Catalog operation failed", http.StatusInternalServerError)
	}
}

func (s *Server) refreshCatalogStats() {
	entries, err := s.catalog.List()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh catalog stats")
		return
	}
	s.metrics.UpdateCatalogStats(len(entries))
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
