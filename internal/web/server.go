package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ammlab/dexsim/internal/logger"
	"github.com/ammlab/dexsim/internal/state"
	"github.com/ammlab/dexsim/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer serves recorded simulation runs and rendered chart reports.
type WebServer struct {
	router   *mux.Router
	port     string
	chartDir string
}

// NewWebServer creates a web server instance. chartDir is served as static
// content at /charts/.
func NewWebServer(port, chartDir string) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:   mux.NewRouter(),
		port:     port,
		chartDir: chartDir,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	chartHandler := http.FileServer(http.Dir(ws.chartDir))
	ws.router.PathPrefix("/charts/").Handler(http.StripPrefix("/charts/", chartHandler))

	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/runs", ws.handleGetRuns).Methods("GET")
	api.HandleFunc("/runs/latest", ws.handleGetLatestRun).Methods("GET")

	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server and database health status.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "OK"
	statusCode := http.StatusOK
	if !state.Enabled() {
		status = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, map[string]any{
		"status":           status,
		"timestamp":        time.Now().UTC().Format(time.RFC3339Nano),
		"database_healthy": state.Enabled(),
	})
}

// handleGetRuns returns recent simulation runs, newest first.
func (ws *WebServer) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	runs, err := state.GetRecentRuns(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent runs")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}
	if runs == nil {
		runs = []types.RunSnapshot{}
	}

	ws.writeJSONResponse(w, http.StatusOK, runs)
}

// handleGetLatestRun returns the most recent run of the requested kind
// (default evaluation).
func (ws *WebServer) handleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = types.RunKindEvaluation
	}

	run, err := state.GetLatestRun(kind)
	if err != nil {
		webLogger.Error().Err(err).Str("kind", kind).Msg("Failed to get latest run")
		ws.writeErrorResponse(w, http.StatusNotFound, "No run found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, run)
}

// loggingMiddleware logs every request at debug level.
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	ws.writeJSONResponse(w, statusCode, map[string]string{"error": message})
}
