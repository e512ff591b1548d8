package generator

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/repository"
	"github.com/gophermaps/navigator/internal/service"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.BuildingsPerArea = 4
	cfg.MaxFloors = 3
	cfg.WaypointsPerFloor = 2
	cfg.Seed = 7
	return cfg
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)
	second, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Buildings, 4*len(domain.DefaultAreaCatalog().Areas))
}

func TestGenerate_ConnectionsReferenceKnownNodes(t *testing.T) {
	ds, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	known := make(map[string]struct{})
	for _, b := range ds.Buildings {
		known[b.NavID] = struct{}{}
	}
	for _, w := range ds.Waypoints {
		_, dup := known[w.NavID]
		require.False(t, dup, "navID %s generated twice", w.NavID)
		known[w.NavID] = struct{}{}
	}

	for _, c := range ds.Connections {
		assert.Contains(t, known, c.From)
		assert.Contains(t, known, c.To)
		assert.NotEqual(t, c.From, c.To)
	}
	for id := range known {
		assert.False(t, strings.Contains(id, "-"), "navID %s must be usable in /routes/{start}-{end}", id)
	}
}

func TestGenerate_AreasAreConnectedAndIsolated(t *testing.T) {
	ds, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	areaOf := make(map[string]string)
	for _, b := range ds.Buildings {
		areaOf[b.NavID] = b.Area
	}
	for _, w := range ds.Waypoints {
		areaOf[w.NavID] = w.Area
	}

	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if p, ok := parent[x]; ok && p != x {
			root := find(p)
			parent[x] = root
			return root
		}
		parent[x] = x
		return x
	}
	for _, c := range ds.Connections {
		require.Equal(t, areaOf[c.From], areaOf[c.To], "edge %s-%s crosses areas", c.From, c.To)
		parent[find(c.From)] = find(c.To)
	}

	roots := make(map[string]string)
	for id, area := range areaOf {
		root := find(id)
		if existing, ok := roots[area]; ok {
			assert.Equal(t, existing, root, "node %s is disconnected from the rest of %s", id, area)
			continue
		}
		roots[area] = root
	}
	assert.Len(t, roots, len(domain.DefaultAreaCatalog().Areas))
}

func TestGenerate_WaypointFloorsAndImages(t *testing.T) {
	cfg := smallConfig()
	cfg.BasementChance = 1
	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	basements := 0
	for _, w := range ds.Waypoints {
		require.NotEmpty(t, w.Floor)
		require.NotEmpty(t, w.Image)
		if w.Floor == "B" {
			basements++
		}
	}
	assert.Equal(t, len(ds.Buildings)*cfg.WaypointsPerFloor, basements)
}

func TestGenerate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(smallConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_AppliesDefaults(t *testing.T) {
	g := New(Config{Seed: 1})
	def := DefaultConfig()

	assert.Equal(t, def.BuildingsPerArea, g.cfg.BuildingsPerArea)
	assert.Equal(t, def.MaxFloors, g.cfg.MaxFloors)
	assert.Equal(t, def.WaypointsPerFloor, g.cfg.WaypointsPerFloor)
	assert.Equal(t, def.Catalog, g.cfg.Catalog)
}

func TestWriteAndReadDataset(t *testing.T) {
	ds, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteDataset(ds, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatasetFile), path)

	loaded, err := ReadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, ds, loaded)
}

func TestReadDataset_Missing(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGeneratedDatasetIngests(t *testing.T) {
	ds, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	client := graph.NewMemoryClient()
	svc := service.NewSeedService(repository.NewSeedWriter(client, domain.DefaultAreaCatalog()))
	ingestor := service.NewBulkIngestor(svc, 4)

	ctx := context.Background()
	require.NoError(t, ingestor.IngestBuildings(ctx, ds.Buildings))
	require.NoError(t, ingestor.IngestWaypoints(ctx, ds.Waypoints))
	require.NoError(t, ingestor.IngestConnections(ctx, ds.Connections))

	assert.Len(t, client.WriteCalls(), len(ds.Buildings)+len(ds.Waypoints)+len(ds.Connections))
}
