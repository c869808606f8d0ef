// Package api m64kit REST API
//
// @title           m64kit REST API
// @version         1.0.0
// @description     Decode, validate and catalog Mupen64 .m64 movie files.
// @host            localhost:8064
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

const shutdownTimeout = 10 * time.Second

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	 <title>m64kit API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Routes builds the router for s. metricsHandler is mounted at /metrics.
func (s *Server) Routes(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	m := s.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(m.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Stateless codec
		r.Post("/decode", m.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))

		// Catalog
		r.Post("/movies", m.InstrumentHandler("POST", "/api/v1/movies", s.handleAddMovie))
		r.Get("/movies", m.InstrumentHandler("GET", "/api/v1/movies", s.handleListMovies))
		r.Get("/movies/{id}", m.InstrumentHandler("GET", "/api/v1/movies/{id}", s.handleGetMovie))
		r.Get("/movies/{id}/raw", m.InstrumentHandler("GET", "/api/v1/movies/{id}/raw", s.handleGetRaw))
		r.Get("/movies/{id}/inputs", m.InstrumentHandler("GET", "/api/v1/movies/{id}/inputs", s.handleGetInputs))
		r.Delete("/movies/{id}", m.InstrumentHandler("DELETE", "/api/v1/movies/{id}", s.handleDeleteMovie))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", s.handleSwagger)

	return r
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/swagger/", "/swagger/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUI))
	case "/swagger/swagger.json":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to generate swagger doc")
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	default:
		http.NotFound(w, r)
	}
}

// requestLogger logs one line per request through logger.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// StartServer listens on the configured address and serves the API until
// ctx is cancelled.
func StartServer(ctx context.Context, movies MovieCatalog, config ServerConfig, logger zerolog.Logger) error {
	addr := net.JoinHostPort(config.Bind, fmt.Sprint(config.Port))
	SwaggerInfo.Host = addr

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	reg := NewRegistry()
	server := NewServer(movies, config, NewMetrics(reg), logger)
	server.refreshCatalogStats()

	logger.Info().
		Str("listen", addr).
		Str("metrics", fmt.Sprintf("http://%s/metrics", addr)).
		Msg("starting m64kit REST API server")

	handler := server.Routes(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return Serve(ctx, ln, handler, logger)
}

// Serve serves handler on ln until ctx is cancelled, then shuts down
// gracefully. ln is closed on return.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errChan
	logger.Info().Msg("server stopped")
	return nil
}
