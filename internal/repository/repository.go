package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/schema"
)

// Repository encapsulates the read-only navigation queries issued against the graph.
type Repository struct {
	client  graph.Client
	catalog domain.AreaCatalog
	labels  *LabelCache
}

// Option customises a Repository.
type Option func(*Repository)

// WithLabelCache replaces the default area label cache.
func WithLabelCache(cache *LabelCache) Option {
	return func(r *Repository) {
		if cache != nil {
			r.labels = cache
		}
	}
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client, catalog domain.AreaCatalog, opts ...Option) *Repository {
	r := &Repository{
		client:  client,
		catalog: catalog,
		labels:  NewLabelCache(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListAreaLabels returns the catalogued areas whose label is present in the graph.
// Label sets change rarely, so results are served from the label cache until
// InvalidateAreaLabels is called or the cache TTL elapses.
func (r *Repository) ListAreaLabels(ctx context.Context) ([]domain.Area, error) {
	labels, err := r.labels.Get(ctx, r.fetchLabels)
	if err != nil {
		return nil, err
	}
	return schema.ToAreas(r.catalog, labels), nil
}

// InvalidateAreaLabels drops the cached label set.
func (r *Repository) InvalidateAreaLabels() {
	r.labels.Invalidate()
}

func (r *Repository) fetchLabels(ctx context.Context) ([]string, error) {
	res, err := r.client.ExecuteRead(ctx, listLabelsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list labels query: %w", err)
	}
	labels := make([]string, 0, len(res.Records))
	for _, record := range res.Records {
		if label := toString(record["label"]); label != "" {
			labels = append(labels, label)
		}
	}
	return labels, nil
}

// ListBuildingsInArea returns the BuildingKey nodes that belong to the area,
// either through their area property or through the area's graph label.
func (r *Repository) ListBuildingsInArea(ctx context.Context, areaName string) ([]domain.BuildingEntry, error) {
	area, ok := r.catalog.Lookup(areaName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidArea, areaName)
	}

	res, err := r.client.ExecuteRead(ctx, buildingsInAreaCypher, map[string]any{
		"areaName":  string(area.Name),
		"areaLabel": area.Label,
	})
	if err != nil {
		return nil, fmt.Errorf("buildings in area query: %w", err)
	}

	rows := column(res, "building")
	for _, row := range rows {
		if err := checkAreaMembership(row, area); err != nil {
			return nil, fmt.Errorf("buildings in area %q: %w", area.Name, err)
		}
	}
	buildings, err := schema.ToBuildings(rows)
	if err != nil {
		return nil, fmt.Errorf("buildings in area %q: %w", area.Name, err)
	}
	return buildings, nil
}

// checkAreaMembership rejects a row that neither names the area in its area
// property nor carries the area label.
func checkAreaMembership(row any, area domain.Area) error {
	var (
		props  map[string]any
		member bool
	)
	switch v := row.(type) {
	case graph.Node:
		props = v.Props
		member = v.HasLabel(area.Label)
	case map[string]any:
		props = v
	default:
		return nil
	}
	stored := toString(props["area"])
	if member || stored == string(area.Name) {
		return nil
	}
	return &domain.SchemaValidationError{
		Entity: "BuildingEntry",
		Field:  "area",
		Reason: fmt.Sprintf("%q does not belong to %q (area %q)", toString(props["navID"]), area.Name, stored),
	}
}

// ListReachableDestinations returns every other BuildingKey node connected to
// the start building by a path of any length. An unknown or isolated start
// building yields an empty slice.
func (r *Repository) ListReachableDestinations(ctx context.Context, building string) ([]domain.BuildingEntry, error) {
	building = strings.TrimSpace(building)
	if building == "" {
		return []domain.BuildingEntry{}, nil
	}

	res, err := r.client.ExecuteRead(ctx, reachableDestinationsCypher, map[string]any{
		"building": building,
	})
	if err != nil {
		return nil, fmt.Errorf("reachable destinations query: %w", err)
	}

	destinations, err := schema.ToBuildings(column(res, "destination"))
	if err != nil {
		return nil, fmt.Errorf("destinations for %q: %w", building, err)
	}
	return destinations, nil
}

// ComputeShortestPath returns the hop-count shortest path between two
// navigation nodes. Among equally short paths the one whose navID sequence
// sorts first is chosen. Unknown endpoints and disconnected endpoints both
// yield domain.ErrRouteNotFound.
func (r *Repository) ComputeShortestPath(ctx context.Context, startNavID, endNavID string) (graph.Path, error) {
	if startNavID == "" || endNavID == "" {
		return graph.Path{}, fmt.Errorf("%w: start and end navIDs are required", domain.ErrRouteNotFound)
	}

	if startNavID == endNavID {
		res, err := r.client.ExecuteRead(ctx, navigationNodeCypher, map[string]any{
			"navId": startNavID,
		})
		if err != nil {
			return graph.Path{}, fmt.Errorf("navigation node query: %w", err)
		}
		if len(res.Records) == 0 {
			return graph.Path{}, fmt.Errorf("%w: unknown node %q", domain.ErrRouteNotFound, startNavID)
		}
		node, ok := res.Records[0]["node"].(graph.Node)
		if !ok {
			return graph.Path{}, fmt.Errorf("navigation node query: unexpected value %T", res.Records[0]["node"])
		}
		return graph.Path{Nodes: []graph.Node{node}}, nil
	}

	res, err := r.client.ExecuteRead(ctx, shortestPathCypher, map[string]any{
		"start": startNavID,
		"end":   endNavID,
	})
	if err != nil {
		return graph.Path{}, fmt.Errorf("shortest path query: %w", err)
	}
	if len(res.Records) == 0 {
		return graph.Path{}, fmt.Errorf("%w: no path from %q to %q", domain.ErrRouteNotFound, startNavID, endNavID)
	}

	path, ok := res.Records[0]["path"].(graph.Path)
	if !ok {
		return graph.Path{}, fmt.Errorf("shortest path query: unexpected value %T", res.Records[0]["path"])
	}
	if len(path.Nodes) == 0 || len(path.Relationships) != len(path.Nodes)-1 {
		return graph.Path{}, errors.New("shortest path query: malformed path")
	}
	return path, nil
}

// BuildingThumbnails resolves building names to the thumbnail stored on their
// BuildingKey node. Names without a BuildingKey node are omitted.
func (r *Repository) BuildingThumbnails(ctx context.Context, names []string) (map[string]string, error) {
	thumbnails := make(map[string]string, len(names))
	if len(names) == 0 {
		return thumbnails, nil
	}

	res, err := r.client.ExecuteRead(ctx, buildingThumbnailsCypher, map[string]any{
		"names": names,
	})
	if err != nil {
		return nil, fmt.Errorf("building thumbnails query: %w", err)
	}

	buildings, err := schema.ToBuildings(column(res, "building"))
	if err != nil {
		return nil, fmt.Errorf("building thumbnails: %w", err)
	}
	for _, b := range buildings {
		thumbnails[b.BuildingName] = b.Thumbnail
	}
	return thumbnails, nil
}

func column(res graph.Result, key string) []any {
	values := make([]any, 0, len(res.Records))
	for _, record := range res.Records {
		values = append(values, record[key])
	}
	return values
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// db.labels() reads the label catalog instead of scanning nodes.
const listLabelsCypher = `
CALL db.labels() YIELD label
RETURN label
`

const buildingsInAreaCypher = `
MATCH (b:BuildingKey)
WHERE b.area = $areaName OR $areaLabel IN labels(b)
RETURN b AS building
ORDER BY b.buildingName
`

// A single expansion from the start node; DISTINCT lets the planner prune
// already visited nodes instead of enumerating trails.
const reachableDestinationsCypher = `
MATCH (start:BuildingKey)
WHERE start.navID = $building OR start.buildingName = $building
MATCH (start)-[*]-(dest:BuildingKey)
WHERE dest <> start
RETURN DISTINCT dest AS destination
ORDER BY destination.buildingName
`

// Route endpoints are matched on navID alone: waypoints are not required to
// carry the Building label.
const navigationNodeCypher = `
MATCH (n {navID: $navId})
RETURN n AS node
LIMIT 1
`

const shortestPathCypher = `
MATCH (start {navID: $start}), (end {navID: $end})
MATCH path = allShortestPaths((start)-[*]-(end))
WITH path, [n IN nodes(path) | n.navID] AS navIds
ORDER BY navIds
LIMIT 1
RETURN path
`

const buildingThumbnailsCypher = `
MATCH (b:BuildingKey)
WHERE b.buildingName IN $names
RETURN b AS building
`
