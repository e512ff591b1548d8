package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gophermaps/navigator/internal/config"
	"github.com/gophermaps/navigator/internal/generator"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/logging"
	"github.com/gophermaps/navigator/internal/repository"
	"github.com/gophermaps/navigator/internal/schema"
	"github.com/gophermaps/navigator/internal/service"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	var (
		datasetDir  = flag.String("dataset-dir", "./data", "Directory containing campus.yaml")
		datasetPath = flag.String("dataset", "", "Path to a campus dataset (overrides dataset-dir)")
		workers     = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	path, err := resolveDatasetPath(*datasetDir, *datasetPath)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	dataset, err := generator.ReadDataset(path)
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "path", path)
		os.Exit(1)
	}
	if len(dataset.Buildings) == 0 {
		logger.Error("dataset has no buildings", "path", path)
		os.Exit(1)
	}

	catalog, err := schema.LoadCatalog(cfg.Navigation.AreasFile)
	if err != nil {
		logger.Error("failed to load area catalog", "error", err, "path", cfg.Navigation.AreasFile)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	svc := service.NewSeedService(repository.NewSeedWriter(graphClient, catalog))
	ingestor := service.NewBulkIngestor(svc, *workers)

	start := time.Now()
	if err := svc.Prepare(ctx); err != nil {
		logger.Error("index creation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingesting buildings", "count", len(dataset.Buildings), "workers", *workers)
	if err := ingestor.IngestBuildings(ctx, dataset.Buildings); err != nil {
		logger.Error("building ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingesting waypoints", "count", len(dataset.Waypoints))
	if err := ingestor.IngestWaypoints(ctx, dataset.Waypoints); err != nil {
		logger.Error("waypoint ingestion failed", "error", err)
		os.Exit(1)
	}

	// Edges last: MATCH on both endpoints silently skips unknown nodes.
	logger.Info("ingesting connections", "count", len(dataset.Connections))
	if err := ingestor.IngestConnections(ctx, dataset.Connections); err != nil {
		logger.Error("connection ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"buildings", len(dataset.Buildings),
		"waypoints", len(dataset.Waypoints),
		"connections", len(dataset.Connections),
	)
}

func resolveDatasetPath(baseDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("stat %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}
	path := filepath.Join(baseDir, generator.DatasetFile)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", errMissingDataset, path)
	}
	return path, nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if err := cfg.RequireGraph(); err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
		ConnectRetries: cfg.Graph.ConnectRetries,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
