package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/apidex/internal/api/handlers"
	mw "github.com/donaldgifford/apidex/internal/api/middleware"
	"github.com/donaldgifford/apidex/internal/catalog"
	"github.com/donaldgifford/apidex/pkg/logger"
)

func serveCommand() *cobra.Command {
	var (
		port    int
		seed    uint64
		size    int
		fixture string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock directory server",
		Example: `  # Serve 120 generated APIs on :8080
  apidex-mock serve

  # Serve a hand-written catalog
  apidex-mock serve --fixture testdata/catalog.json --port 9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("size") {
				cfg.Server.SeedSize = size
			}

			log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

			var cat *catalog.Catalog
			if fixture != "" {
				cat, err = catalog.LoadFixture(fixture)
				if err != nil {
					return err
				}
			} else {
				cat = catalog.Seed(cfg.Server.SeedSize, seed)
			}
			log.Info("catalog loaded", "apis", cat.Len(), "fixture", fixture)

			e := newServer(cat, log)
			srv := &http.Server{
				Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
				Handler:      e,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}
			return run(cmd.Context(), srv, log)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides server.port)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed for the generated catalog")
	cmd.Flags().IntVar(&size, "size", 120, "number of generated APIs (overrides server.seed_size)")
	cmd.Flags().StringVar(&fixture, "fixture", "", "JSON catalog fixture to serve instead of generated data")

	return cmd
}

// newServer wires the echo router, middleware, huma operations, probes and
// the metrics endpoint.
func newServer(cat *catalog.Catalog, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.RequestLog(log), mw.Recovery(log), mw.Metrics())

	health := handlers.NewHealthHandler(cat)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("apidex mock directory", Version))
	api.UseMiddleware(mw.OperationMetrics())
	handlers.RegisterAPIRoutes(api, handlers.NewAPIsHandler(cat))

	return e
}

func run(ctx context.Context, srv *http.Server, log *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	log.Info("server stopped")
	return nil
}
