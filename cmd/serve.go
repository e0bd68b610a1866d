package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/npcpath/npcpath/internal/metrics"
	"github.com/npcpath/npcpath/internal/pathstore"
	"github.com/npcpath/npcpath/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveAddrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored paths and metrics over HTTP",
	Long: `Serve loads every .path file into the path registry, watches the paths
directory for new or rewritten files, and serves:

  GET /paths          registered path names with waypoint counts
  GET /paths/{name}   the waypoints of one path
  GET /metrics        Prometheus metrics

Examples:
  npcpath serve
  npcpath serve --addr :8089 --paths-dir /srv/world/paths`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(c *cobra.Command) {
	c.Flags().StringVar(&serveAddrFlag, "addr", "", "listen address (default from serve.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	overrides := map[string]any{}
	if cmd.Flags().Changed("addr") {
		overrides["serve.addr"] = serveAddrFlag
	}
	env, err := setup(cmd, overrides)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	reg := registry.New()
	loader := pathstore.NewLoader(env.store, reg, pathstore.WithLogger(env.logger), pathstore.WithMetrics(m))
	if _, err := loader.LoadAll(); err != nil {
		return err
	}
	watcher, err := pathstore.NewWatcher(loader)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := watcher.Run(ctx); err != nil {
			env.logger.Error("path watcher stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              env.cfg.Serve.Addr,
		Handler:           newServeHandler(reg, promReg, env.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		env.logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	env.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// pathsHandler serves the path registry as JSON.
type pathsHandler struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func newServeHandler(reg *registry.Registry, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	h := &pathsHandler{registry: reg, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /paths", h.handleList)
	mux.HandleFunc("GET /paths/{name}", h.handleGet)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// handleList handles GET /paths.
func (h *pathsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	counts := h.registry.Snapshot()
	paths := make([]PathSummary, 0, len(counts))
	for _, name := range h.registry.Names() {
		paths = append(paths, PathSummary{Name: name, Waypoints: counts[name]})
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"paths": paths})
}

// handleGet handles GET /paths/{name}.
func (h *pathsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	t, ok := h.registry.Get(name)
	if !ok {
		h.writeJSON(w, r, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("path %q not found", name)})
		return
	}
	h.writeJSON(w, r, http.StatusOK, PathDocument{Name: name, Waypoints: t})
}

func (h *pathsHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", "path", r.URL.Path, "error", err)
	}
}
