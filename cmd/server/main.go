package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liamcoop/taxregimes/amount"
	"github.com/liamcoop/taxregimes/internal/config"
	"github.com/liamcoop/taxregimes/internal/logger"
	"github.com/liamcoop/taxregimes/tax"
)

// Server serves the HTML form and the JSON API over a single tax engine.
// It is constructed once in main and handed to http.Server.
type Server struct {
	engine *tax.Engine
	cfg    config.ServerConfig
	tmpl   *template.Template
	router *chi.Mux
}

func NewServer(engine *tax.Engine, cfg config.ServerConfig) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	regimes, err := engine.Regimes()
	if err != nil {
		return nil, fmt.Errorf("failed to load regimes: %w", err)
	}

	ids := make([]string, 0, len(regimes))
	for _, r := range regimes {
		ids = append(ids, r.ID)
	}
	logger.Info("loaded regimes", "count", len(regimes), "regimes", ids)

	s := &Server{
		engine: engine,
		cfg:    cfg,
		tmpl:   tmpl,
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(s.cfg.SlowRequest))
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	// HTML form
	r.Get("/", s.handleForm)
	r.Post("/", s.handleFormSubmit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Post("/calculate", s.handleCalculate)

		r.Get("/regimes", s.handleListRegimes)
		r.Get("/regimes/{regimeId}", s.handleGetRegime)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Form handler: empty form, no results
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, http.StatusOK, formView{})
}

// Form submission handler
func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderForm(w, http.StatusBadRequest, formView{Error: "Could not read the submitted form."})
		return
	}

	view := newFormView(r.PostForm)

	in, err := view.input()
	if err != nil {
		view.Error = "Invalid " + err.Error()
		s.renderForm(w, http.StatusBadRequest, view)
		return
	}

	cmp, err := s.engine.Compare(in)
	if err != nil {
		logger.Error("calculation failed", "error", err)
		view.Error = "The calculation failed, please try again."
		s.renderForm(w, http.StatusInternalServerError, view)
		return
	}

	view.Comparison = cmp
	s.renderForm(w, http.StatusOK, view)
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	regimes, err := s.engine.Regimes()
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Error:  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		RegimesLoaded: len(regimes),
	})
}

// Metrics handler
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, logger.Snapshot())
}

// Calculation handler
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	in, err := parseInput(string(req.GrossSalary), string(req.Pension),
		string(req.HomeLoanInterest), string(req.Section80C), string(req.NPS))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	startTime := time.Now()

	cmp, err := s.engine.Compare(in)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "calculation failed", err)
		return
	}

	id := uuid.NewString()
	logger.Debug("calculated taxes",
		"id", id,
		"old", cmp.Old,
		"new", cmp.New,
		"proposed", cmp.Proposed,
		"duration", time.Since(startTime).String(),
	)

	respondJSON(w, http.StatusOK, CalculateResponse{
		ID:       id,
		Input:    in,
		Old:      cmp.Old,
		New:      cmp.New,
		Proposed: cmp.Proposed,
		Formatted: FormattedTaxes{
			Old:      amount.FormatIndian(cmp.Old),
			New:      amount.FormatIndian(cmp.New),
			Proposed: amount.FormatIndian(cmp.Proposed),
		},
		Results: cmp.Results,
	})
}

// List regimes handler
func (s *Server) handleListRegimes(w http.ResponseWriter, r *http.Request) {
	regimes, err := s.engine.Regimes()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list regimes", err)
		return
	}

	respondJSON(w, http.StatusOK, RegimesListResponse{Regimes: regimes})
}

// Get regime handler
func (s *Server) handleGetRegime(w http.ResponseWriter, r *http.Request) {
	regimeID := chi.URLParam(r, "regimeId")

	regimes, err := s.engine.Regimes()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list regimes", err)
		return
	}

	for _, regime := range regimes {
		if regime.ID == regimeID {
			respondJSON(w, http.StatusOK, regime)
			return
		}
	}

	respondError(w, http.StatusNotFound, "regime not found", fmt.Errorf("%w: %s", tax.ErrRegimeNotFound, regimeID))
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(ErrorResponse{Error: "failed to encode response", Details: err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	respondJSON(w, status, response)
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := config.New()

	cmd := &cobra.Command{
		Use:           "taxcalc-server",
		Short:         "Serve the income tax regime comparison form and API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, cfgFile)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./taxcalc.yaml or $HOME/.config/taxcalc/taxcalc.yaml)")
	cmd.Flags().String("port", "", "port to listen on (default 8080)")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")

	bindFlag(v, "server.port", cmd, "port")
	bindFlag(v, "logging.level", cmd, "log-level")

	return cmd
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

func run(ctx context.Context, v *viper.Viper, cfgFile string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.Warn("invalid log level in config", "level", cfg.Logging.Level, "error", err)
	}
	logger.SetLevel(level)

	engine, err := cfg.Engine()
	if err != nil {
		return err
	}

	server, err := NewServer(engine, cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Fatal("server exited", "error", err)
	}
}
