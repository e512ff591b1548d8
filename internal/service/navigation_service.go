package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/schema"
)

// Version is the API version reported by /version. It is overridden at build
// time with -ldflags "-X github.com/gophermaps/navigator/internal/service.Version=...".
var Version = "1.2.0"

var tracer = otel.Tracer("github.com/gophermaps/navigator/internal/service")

// GraphRepository is the read-only query contract required by the navigation service.
type GraphRepository interface {
	ListAreaLabels(ctx context.Context) ([]domain.Area, error)
	InvalidateAreaLabels()
	ListBuildingsInArea(ctx context.Context, area string) ([]domain.BuildingEntry, error)
	ListReachableDestinations(ctx context.Context, building string) ([]domain.BuildingEntry, error)
	ComputeShortestPath(ctx context.Context, startNavID, endNavID string) (graph.Path, error)
	BuildingThumbnails(ctx context.Context, names []string) (map[string]string, error)
}

// NavigationService answers the HTTP handlers' area, building, destination and route requests.
type NavigationService struct {
	repo           GraphRepository
	catalog        domain.AreaCatalog
	areasFromGraph bool
	version        string
}

// NewNavigationService constructs a NavigationService. Areas are read from the
// graph by default; see WithStaticAreas.
func NewNavigationService(repo GraphRepository, catalog domain.AreaCatalog) *NavigationService {
	return &NavigationService{
		repo:           repo,
		catalog:        catalog,
		areasFromGraph: true,
		version:        Version,
	}
}

// WithStaticAreas serves /areas from the configured catalog instead of the graph labels.
func (s *NavigationService) WithStaticAreas(static bool) *NavigationService {
	s.areasFromGraph = !static
	return s
}

// WithVersion overrides the reported API version when non-empty.
func (s *NavigationService) WithVersion(version string) *NavigationService {
	if version != "" {
		s.version = version
	}
	return s
}

// ListAreas returns the known areas in catalog order.
func (s *NavigationService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	if !s.areasFromGraph {
		return append([]domain.Area{}, s.catalog.Areas...), nil
	}
	areas, err := s.repo.ListAreaLabels(ctx)
	if err != nil {
		return nil, err
	}
	if areas == nil {
		areas = []domain.Area{}
	}
	return areas, nil
}

// ListBuildings returns the buildings of an area; unknown areas yield domain.ErrInvalidArea.
func (s *NavigationService) ListBuildings(ctx context.Context, area string) ([]domain.BuildingEntry, error) {
	buildings, err := s.repo.ListBuildingsInArea(ctx, sanitizeString(area))
	if err != nil {
		return nil, err
	}
	if buildings == nil {
		buildings = []domain.BuildingEntry{}
	}
	return buildings, nil
}

// ListDestinations returns the buildings reachable from building. The result
// is never nil.
func (s *NavigationService) ListDestinations(ctx context.Context, building string) ([]domain.BuildingEntry, error) {
	dests, err := s.repo.ListReachableDestinations(ctx, sanitizeString(building))
	if err != nil {
		return nil, err
	}
	if dests == nil {
		dests = []domain.BuildingEntry{}
	}
	return dests, nil
}

// PlanRoute computes the route between two navigation nodes and decorates it
// with building thumbnails and per-edge instruction availability.
func (s *NavigationService) PlanRoute(ctx context.Context, startNavID, endNavID string) (domain.RouteResult, error) {
	ctx, span := tracer.Start(ctx, "service.PlanRoute")
	defer span.End()
	span.SetAttributes(attribute.String("route.start", startNavID), attribute.String("route.end", endNavID))

	result, err := s.planRoute(ctx, sanitizeString(startNavID), sanitizeString(endNavID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.RouteResult{}, err
	}
	span.SetAttributes(attribute.Int("route.nodes", len(result.PathNodes)))
	return result, nil
}

func (s *NavigationService) planRoute(ctx context.Context, startNavID, endNavID string) (domain.RouteResult, error) {
	path, err := s.repo.ComputeShortestPath(ctx, startNavID, endNavID)
	if err != nil {
		return domain.RouteResult{}, err
	}

	raws := make([]any, 0, len(path.Nodes))
	for _, n := range path.Nodes {
		raws = append(raws, n)
	}
	nodes, err := schema.ToNavigationNodes(raws)
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("route %s to %s: %w", startNavID, endNavID, err)
	}

	thumbnails, err := s.repo.BuildingThumbnails(ctx, distinctBuildings(nodes))
	if err != nil {
		return domain.RouteResult{}, err
	}
	if thumbnails == nil {
		thumbnails = map[string]string{}
	}

	return domain.RouteResult{
		PathNodes:             nodes,
		BuildingThumbnails:    thumbnails,
		InstructionsAvailable: edgeInstructions(nodes, path.Relationships),
	}, nil
}

// Version reports the API version.
func (s *NavigationService) Version() string {
	return s.version
}

// InvalidateAreaCache forces the next ListAreas to re-read the graph labels.
func (s *NavigationService) InvalidateAreaCache() {
	s.repo.InvalidateAreaLabels()
}

func distinctBuildings(nodes []domain.NavigationNode) []string {
	seen := make(map[string]struct{}, len(nodes))
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.BuildingName]; ok {
			continue
		}
		seen[n.BuildingName] = struct{}{}
		names = append(names, n.BuildingName)
	}
	return names
}

// edgeInstructions keys each traversed edge by walking direction.
func edgeInstructions(nodes []domain.NavigationNode, rels []graph.Relationship) map[string]bool {
	edges := make(map[string]bool, len(rels))
	for i := 0; i+1 < len(nodes) && i < len(rels); i++ {
		detailed, _ := rels[i].Props["hasDetailedInstructions"].(bool)
		edges[domain.EdgeKey(nodes[i].NavID, nodes[i+1].NavID)] = detailed
	}
	return edges
}
