package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gophermaps/navigator/internal/config"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/logging"
	"github.com/gophermaps/navigator/internal/metrics"
	"github.com/gophermaps/navigator/internal/notify"
	"github.com/gophermaps/navigator/internal/repository"
	"github.com/gophermaps/navigator/internal/schema"
	"github.com/gophermaps/navigator/internal/server"
	"github.com/gophermaps/navigator/internal/service"
)

const notifyTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	notifier := notify.New(cfg.Notify.DiscordWebhookURL, cfg.Notify.Source, notify.NewLogNotifier(logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, notifier); err != nil {
		logger.Error("navigator stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config, notifier notify.Notifier) error {
	catalog, err := schema.LoadCatalog(cfg.Navigation.AreasFile)
	if err != nil {
		return err
	}
	logger.Info("area catalog loaded", "version", catalog.Version, "areas", len(catalog.Areas))

	registry := metrics.NewRegistry()

	graphClient, err := buildGraphClient(ctx, cfg, registry)
	if err != nil {
		reportStartupFailure(ctx, logger, notifier, cfg, err)
		return fmt.Errorf("create graph client: %w", err)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	notifyBestEffort(ctx, logger, notifier, notify.SeverityInfo, "Notice", "Neo4j authentication verified; navigator is starting")

	cache := repository.NewLabelCache(cfg.Navigation.AreaCacheTTL).WithRecorder(registry)
	repo := repository.New(graphClient, catalog, repository.WithLabelCache(cache))
	navigation := service.NewNavigationService(repo, catalog).
		WithStaticAreas(!cfg.Navigation.AreasFromGraph).
		WithVersion(cfg.Navigation.APIVersion)

	deps := server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		API:              server.NewAPIHandlers(logger.With("component", "api"), navigation),
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	}
	if cfg.HTTP.MetricsEnabled {
		deps.Metrics = registry
		deps.MetricsHandler = registry.Handler()
	}

	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger, deps))
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("navigator shut down cleanly")
	return nil
}

func buildGraphClient(ctx context.Context, cfg config.Config, observer graph.QueryObserver) (graph.Client, error) {
	if err := cfg.RequireGraph(); err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrMissingURI, err)
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
		QueryTimeout:   cfg.Graph.QueryTimeout,
		ConnectRetries: cfg.Graph.ConnectRetries,
		Observer:       observer,
	}
	return graph.NewNeo4jClient(ctx, opts)
}

func reportStartupFailure(ctx context.Context, logger *slog.Logger, notifier notify.Notifier, cfg config.Config, err error) {
	title := "Neo4j Connection Failed"
	switch {
	case errors.Is(err, graph.ErrAuthentication):
		title = "Neo4j Authentication Failed"
	case errors.Is(err, graph.ErrMissingURI):
		title = "Neo4j Configuration Missing"
	}
	notifyBestEffort(ctx, logger, notifier, notify.SeverityError, title, err.Error(),
		notify.Field{Title: "URI", Value: valueOrUnset(cfg.Graph.URI), Inline: true},
		notify.Field{Title: "Database", Value: valueOrUnset(cfg.Graph.Database), Inline: true},
	)
}

func notifyBestEffort(ctx context.Context, logger *slog.Logger, notifier notify.Notifier, severity notify.Severity, title, msg string, fields ...notify.Field) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := notifier.Notify(ctx, severity, title, msg, fields...); err != nil {
		logger.Warn("startup notification failed", "error", err, "title", title)
	}
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
