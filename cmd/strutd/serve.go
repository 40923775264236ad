package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	httpadapter "github.com/strutkit/strut/adapters/http"
	"github.com/strutkit/strut/adapters/metrics"
	"github.com/strutkit/strut/app"
	"github.com/strutkit/strut/config"
	"github.com/strutkit/strut/db"
	"github.com/strutkit/strut/domain/route"
	"github.com/strutkit/strut/domain/schema"
	"github.com/strutkit/strut/record"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo REST server",
	Long: `Start the strut demo server.

The server will:
  - Load configuration from strut.yaml (or --config)
  - Open the SQLite database and bootstrap the posts table
  - Register the posts REST routes
  - Serve requests with health and metrics endpoints

Examples:
  strutd serve
  strutd serve --config /etc/strut/config.yaml
  strutd serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

var postDef = &record.Definition{
	Table: "posts",
	Fields: []schema.Field{
		{Name: "id", Type: schema.Int},
		{Name: "title", Type: schema.String},
		{Name: "body", Type: schema.String},
		{Name: "draft", Type: schema.Bool},
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	holder, err := config.NewHolder(cfgFile, zerolog.New(os.Stdout).With().Timestamp().Logger())
	if err != nil {
		return err
	}
	cfg := holder.Get()

	logger := newLogger(cfg.Logging)
	if hotReload {
		if err := holder.WatchFile(); err != nil {
			return err
		}
		defer holder.Stop()
	}

	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := cmd.Context()
	if _, err := db.Raw(ctx, conn, `CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		body TEXT,
		draft INTEGER
	)`); err != nil {
		return err
	}

	registry := schema.NewRegistry()
	postDef.Register(registry)

	router := app.New(app.Config{
		AllowedOrigin: cfg.CORS.AllowedOrigin,
		Logger:        logger,
	})
	if err := registerRoutes(router, conn); err != nil {
		return err
	}

	var collector *metrics.Collector
	metricsPath := ""
	if cfg.Metrics.Enabled {
		collector = metrics.New()
		metricsPath = cfg.Metrics.Path
	}

	handler := httpadapter.NewHandler(router, logger, collector)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      httpadapter.Mount(handler, metricsPath),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// registerRoutes wires the posts REST surface. The literal post/new
// route is registered before post/:id on purpose: matching is
// first-registered-wins.
func registerRoutes(router *app.Router, conn db.Executor) error {
	regs := []error{
		router.Get("posts", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
			page := intQuery(req, "page", 1)
			perPage := intQuery(req, "per_page", 20)
			posts, err := record.All(ctx, postDef, conn, page, perPage)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, len(posts))
			for i, p := range posts {
				out[i] = p.Attributes()
			}
			return out, nil
		}),

		router.Get("post/new", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
			return map[string]any{"title": "", "body": "", "draft": true}, nil
		}),

		router.Get("post/:id", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
			id, err := strconv.ParseInt(params.Get("id"), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad id %q", record.ErrNotFound, params.Get("id"))
			}
			p, err := record.FindOrFail(ctx, postDef, conn, id)
			if err != nil {
				return nil, err
			}
			return p.Attributes(), nil
		}),

		router.Post("posts", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
			p, err := record.Create(ctx, postDef, conn, map[string]any{
				"title": req.Form.Get("title"),
				"body":  req.Form.Get("body"),
				"draft": req.Form.Get("draft") == "1",
			})
			if err != nil {
				return nil, err
			}
			return p.Attributes(), nil
		}),

		router.Put("post/:id", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
			id, err := strconv.ParseInt(params.Get("id"), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad id %q", record.ErrNotFound, params.Get("id"))
			}
			p, err := record.FindOrFail(ctx, postDef, conn, id)
			if err != nil {
				return nil, err
			}
			for _, field := range []string{"title", "body"} {
				if req.Put.Has(field) {
					p.Set(field, req.Put.Get(field))
				}
			}
			if req.Put.Has("draft") {
				p.Set("draft", req.Put.Get("draft") == "1")
			}
			if err := p.SaveIfChanged(ctx); err != nil {
				return nil, err
			}
			return p.Attributes(), nil
		}),

		router.Delete("post/:id", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
			id, err := strconv.ParseInt(params.Get("id"), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad id %q", record.ErrNotFound, params.Get("id"))
			}
			p, err := record.FindOrFail(ctx, postDef, conn, id)
			if err != nil {
				return nil, err
			}
			if err := p.Delete(ctx); err != nil {
				return nil, err
			}
			return nil, nil
		}),
	}

	for _, err := range regs {
		if err != nil {
			return err
		}
	}
	return nil
}

func intQuery(req *route.Request, name string, fallback int) int {
	v := req.Query.Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
