package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lumina-app/lumina-import-go/internal/app"
	"github.com/lumina-app/lumina-import-go/internal/config"
	"github.com/lumina-app/lumina-import-go/internal/domain"
	"github.com/lumina-app/lumina-import-go/internal/importer"
	"github.com/lumina-app/lumina-import-go/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	srv := &server{container: container, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Post("/api/profiles", srv.handleImport)

	httpServer := &http.Server{
		Addr:              cfg.API.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Import API starting", zap.String("addr", cfg.API.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown", zap.Error(err))
	}
}

type server struct {
	container *app.Container
	logger    *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.container.Postgres.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleImport runs a single import and maps the pipeline's error taxonomy to
// HTTP statuses: 400 missing name, 404 page not found, 409 duplicate, 500
// anything else.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req domain.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	outcome := s.container.Importer.ImportOne(r.Context(), &req, importer.Options{})

	switch outcome.Status {
	case domain.ImportSuccess:
		writeJSON(w, http.StatusCreated, outcome.Profile)
	case domain.ImportSkipped:
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: fmt.Sprintf("profile %q already exists", outcome.Name),
		})
	default:
		status := http.StatusInternalServerError
		if strings.Contains(outcome.Reason, "no page found") {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse{Error: outcome.Reason})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
