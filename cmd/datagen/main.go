package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gophermaps/navigator/internal/generator"
	"github.com/gophermaps/navigator/internal/schema"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		areasFile       = flag.String("areas", "", "YAML area catalog (defaults to the built-in campus areas)")
		buildings       = flag.Int("buildings", cfg.BuildingsPerArea, "number of buildings per area")
		maxFloors       = flag.Int("max-floors", cfg.MaxFloors, "maximum above-ground floors per building")
		waypoints       = flag.Int("waypoints", cfg.WaypointsPerFloor, "waypoints per floor")
		basementChance  = flag.Float64("basement-chance", cfg.BasementChance, "probability that a building has a basement floor")
		connectorChance = flag.Float64("connector-chance", cfg.ExtraConnectorChance, "probability of an extra tunnel skipping one building")
		detailedChance  = flag.Float64("detailed-chance", cfg.DetailedInstructionChance, "probability that an edge has detailed instructions")
		seed            = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir       = flag.String("output-dir", "data", "directory to write campus.yaml")
		writeStdout     = flag.Bool("stdout", false, "write the dataset to stdout instead of a file")
	)
	flag.Parse()

	catalog, err := schema.LoadCatalog(*areasFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load area catalog: %v\n", err)
		os.Exit(1)
	}

	genCfg := generator.Config{
		Catalog:                   catalog,
		BuildingsPerArea:          *buildings,
		MaxFloors:                 *maxFloors,
		WaypointsPerFloor:         *waypoints,
		BasementChance:            clampProbability(*basementChance),
		ExtraConnectorChance:      clampProbability(*connectorChance),
		DetailedInstructionChance: clampProbability(*detailedChance),
		Seed:                      *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := yaml.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := generator.WriteDataset(dataset, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d buildings, %d waypoints and %d connections into %s\n",
		len(dataset.Buildings), len(dataset.Waypoints), len(dataset.Connections), path)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
