package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gophermaps/navigator/internal/config"
	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/logging"
	"github.com/gophermaps/navigator/internal/repository"
	"github.com/gophermaps/navigator/internal/schema"
	"github.com/gophermaps/navigator/internal/service"
)

// serviceFactory opens a NavigationService. The returned func releases the
// underlying graph connection.
type serviceFactory func(ctx context.Context, opts rootOptions) (*service.NavigationService, func(), error)

type rootOptions struct {
	areasFile string
	timeout   time.Duration
	pretty    bool
}

func newRootCmd(factory serviceFactory) *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:           "navctl",
		Short:         "Query the campus navigation graph from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.areasFile, "areas", "", "YAML area catalog (overrides NAV_AREAS_FILE)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")

	// run wires a command to a service call and prints its JSON result.
	run := func(call func(ctx context.Context, svc *service.NavigationService, args []string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			svc, closeFn, err := factory(ctx, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			out, err := call(ctx, svc, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out, opts.pretty)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "areas",
			Short: "List the campus areas present in the graph",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, svc *service.NavigationService, _ []string) (any, error) {
				return svc.ListAreas(ctx)
			}),
		},
		&cobra.Command{
			Use:   "buildings <area>",
			Short: "List the buildings in an area",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, svc *service.NavigationService, args []string) (any, error) {
				return svc.ListBuildings(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "destinations <building>",
			Short: "List the buildings reachable from a building",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, svc *service.NavigationService, args []string) (any, error) {
				return svc.ListDestinations(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "route <start> <end>",
			Short: "Compute the shortest route between two navigation nodes",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, svc *service.NavigationService, args []string) (any, error) {
				return svc.PlanRoute(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the API version the server reports",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				version, err := apiVersion()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version}, opts.pretty)
			},
		},
	)
	return root
}

// apiVersion resolves the version the same way the server does, honouring
// the API_VERSION override. It needs no graph connection.
func apiVersion() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return service.NewNavigationService(nil, domain.AreaCatalog{}).
		WithVersion(cfg.Navigation.APIVersion).
		Version(), nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func defaultServiceFactory(ctx context.Context, opts rootOptions) (*service.NavigationService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWithWriter(cfg.Logging, os.Stderr).With("component", "navctl")

	areasFile := cfg.Navigation.AreasFile
	if opts.areasFile != "" {
		areasFile = opts.areasFile
	}
	catalog, err := schema.LoadCatalog(areasFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load area catalog: %w", err)
	}

	if err := cfg.RequireGraph(); err != nil {
		return nil, nil, err
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
		QueryTimeout:   cfg.Graph.QueryTimeout,
		ConnectRetries: cfg.Graph.ConnectRetries,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)

	repo := repository.New(client, catalog)
	svc := service.NewNavigationService(repo, catalog).
		WithStaticAreas(!cfg.Navigation.AreasFromGraph).
		WithVersion(cfg.Navigation.APIVersion)

	closeFn := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}
	return svc, closeFn, nil
}
