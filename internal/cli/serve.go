package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/floorplace/floorplace/pkg/cache"
	apperrors "github.com/floorplace/floorplace/pkg/errors"
	"github.com/floorplace/floorplace/pkg/render"
	"github.com/floorplace/floorplace/pkg/store"
)

// envRedisPassword supplies the Redis password for --redis.
const envRedisPassword = "FLOORPLACE_REDIS_PASSWORD"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string // listen address
	storeKind string // run store backend: "file" or "mongo"
	redisAddr string // optional Redis address for the artifact cache
	redisDB   int    // Redis database number
}

// serveCommand creates the serve command, a read-only HTTP viewer over the
// run store. Rendered SVGs are cached in Redis when --redis is set.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr: ":8080",
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve saved runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.storeKind, "store", "file", "run store backend: file or mongo")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the artifact cache (optional)")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")

	return cmd
}

// runServe wires the server dependencies and blocks until the context is
// cancelled.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	s, err := newStore(ctx, opts.storeKind)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	artifactCache, err := newServeCache(ctx, opts)
	if err != nil {
		return err
	}
	defer artifactCache.Close()

	srv := &runServer{
		store:  s,
		cache:  artifactCache,
		keyer:  cache.NewScopedKeyer(nil, "serve:"),
		logger: c.Logger,
	}

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr, "store", opts.storeKind)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newServeCache picks the artifact cache backend: Redis when configured,
// otherwise the shared file cache.
func newServeCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.redisAddr == "" {
		return newCache(false)
	}
	return cache.NewRedisCache(ctx, opts.redisAddr, os.Getenv(envRedisPassword), opts.redisDB)
}

// runServer serves the run store over HTTP.
type runServer struct {
	store  store.Store
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// routes builds the chi router.
func (s *runServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/runs/{id}/svg", s.handleRunSVG)

	return r
}

func (s *runServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *runServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *runServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleRunSVG renders the run's placement as SVG, caching the result.
func (s *runServer) handleRunSVG(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if run.Placement == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("run %s carries no placement", run.ID))
		return
	}

	key := s.keyer.ArtifactKey(run.ID, cache.ArtifactKeyOpts{Format: "svg"})
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		s.writeSVG(w, data)
		return
	}

	circ, err := run.Placement.Build()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	svg := render.PlacementSVG(circ, render.WithObjective(run.Placement.Objective))

	if err := s.cache.Set(r.Context(), key, svg, cache.ArtifactTTL); err != nil {
		s.logger.Error("cache artifact", "run", run.ID, "error", err)
	}
	s.writeSVG(w, svg)
}

// loadRun resolves the {id} path parameter, writing the error response on
// failure.
func (s *runServer) loadRun(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateRunID(id); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	run, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("run %s not found", id))
		return nil, false
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return run, true
}

func (s *runServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *runServer) writeSVG(w http.ResponseWriter, svg []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(svg); err != nil {
		s.logger.Error("write svg", "error", err)
	}
}

func (s *runServer) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
