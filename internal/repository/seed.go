package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
)

// SeedWriter persists campus datasets. It is used by offline tooling only;
// the request path never writes to the graph.
type SeedWriter struct {
	client  graph.Client
	catalog domain.AreaCatalog
}

// BuildingSeed describes a BuildingKey node.
type BuildingSeed struct {
	Area  domain.AreaName
	Entry domain.BuildingEntry
}

// WaypointSeed describes a navigation waypoint node.
type WaypointSeed struct {
	Area domain.AreaName
	Node domain.NavigationNode
}

// ConnectionSeed describes an undirected walkable edge.
type ConnectionSeed struct {
	FromNavID               string
	ToNavID                 string
	HasDetailedInstructions bool
}

// NewSeedWriter instantiates a SeedWriter backed by the supplied graph client.
func NewSeedWriter(client graph.Client, catalog domain.AreaCatalog) *SeedWriter {
	return &SeedWriter{client: client, catalog: catalog}
}

// EnsureIndexes creates the navID indexes the read queries rely on.
func (w *SeedWriter) EnsureIndexes(ctx context.Context) error {
	for _, stmt := range indexStatements {
		if _, err := w.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// UpsertBuilding ensures a BuildingKey node exists with the latest metadata.
// The area label is the only query fragment not bound as a parameter, so it
// is taken from the catalog, never from the caller.
func (w *SeedWriter) UpsertBuilding(ctx context.Context, seed BuildingSeed) error {
	if seed.Entry.NavID == "" {
		return errors.New("building navID is required")
	}
	area, ok := w.catalog.Lookup(string(seed.Area))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidArea, seed.Area)
	}

	params := map[string]any{
		"navId": seed.Entry.NavID,
		"props": map[string]any{
			"buildingName": seed.Entry.BuildingName,
			"thumbnail":    seed.Entry.Thumbnail,
			"area":         string(area.Name),
		},
	}
	if _, err := w.client.ExecuteWrite(ctx, fmt.Sprintf(upsertBuildingCypherTemplate, quoteLabel(area.Label)), params); err != nil {
		return fmt.Errorf("upsert building %s: %w", seed.Entry.NavID, err)
	}
	return nil
}

// UpsertWaypoint ensures a navigation waypoint node exists.
func (w *SeedWriter) UpsertWaypoint(ctx context.Context, seed WaypointSeed) error {
	if seed.Node.NavID == "" {
		return errors.New("waypoint navID is required")
	}
	area, ok := w.catalog.Lookup(string(seed.Area))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidArea, seed.Area)
	}

	params := map[string]any{
		"navId": seed.Node.NavID,
		"props": map[string]any{
			"buildingName": seed.Node.BuildingName,
			"floor":        floorValue(seed.Node.Floor),
			"image":        seed.Node.Image,
		},
	}
	if _, err := w.client.ExecuteWrite(ctx, fmt.Sprintf(upsertWaypointCypherTemplate, quoteLabel(area.Label)), params); err != nil {
		return fmt.Errorf("upsert waypoint %s: %w", seed.Node.NavID, err)
	}
	return nil
}

// UpsertConnection ensures a walkable edge exists between two nodes.
func (w *SeedWriter) UpsertConnection(ctx context.Context, seed ConnectionSeed) error {
	if seed.FromNavID == "" || seed.ToNavID == "" {
		return errors.New("both connection endpoints are required")
	}
	if seed.FromNavID == seed.ToNavID {
		return fmt.Errorf("connection %s loops onto itself", seed.FromNavID)
	}

	params := map[string]any{
		"from":                    seed.FromNavID,
		"to":                      seed.ToNavID,
		"hasDetailedInstructions": seed.HasDetailedInstructions,
	}
	if _, err := w.client.ExecuteWrite(ctx, upsertConnectionCypher, params); err != nil {
		return fmt.Errorf("upsert connection %s-%s: %w", seed.FromNavID, seed.ToNavID, err)
	}
	return nil
}

// floorValue stores purely numeric floors as integers, matching the
// historical campus data the read path has to normalise.
func floorValue(floor string) any {
	if n, err := strconv.ParseInt(floor, 10, 64); err == nil {
		return n
	}
	return floor
}

// quoteLabel escapes a catalogued label for use in a label position.
func quoteLabel(label string) string {
	escaped := make([]rune, 0, len(label)+2)
	escaped = append(escaped, '`')
	for _, r := range label {
		if r == '`' {
			escaped = append(escaped, '`')
		}
		escaped = append(escaped, r)
	}
	return string(append(escaped, '`'))
}

var indexStatements = []string{
	"CREATE INDEX building_nav_id IF NOT EXISTS FOR (n:Building) ON (n.navID)",
	"CREATE INDEX building_key_name IF NOT EXISTS FOR (n:BuildingKey) ON (n.buildingName)",
	"CREATE INDEX building_key_area IF NOT EXISTS FOR (n:BuildingKey) ON (n.area)",
}

const upsertBuildingCypherTemplate = `
MERGE (b:Building {navID: $navId})
SET b:BuildingKey:%s
SET b += $props
RETURN b.navID AS navID
`

const upsertWaypointCypherTemplate = `
MERGE (n:Building {navID: $navId})
SET n:%s
SET n += $props
RETURN n.navID AS navID
`

const upsertConnectionCypher = `
MATCH (a:Building {navID: $from})
MATCH (b:Building {navID: $to})
MERGE (a)-[c:CONNECTS_TO]-(b)
SET c.hasDetailedInstructions = $hasDetailedInstructions
RETURN type(c) AS type
`
