package service

import (
	"context"
	"errors"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/repository"
)

// SeedRepository is the storage contract required by the seeding service.
type SeedRepository interface {
	EnsureIndexes(ctx context.Context) error
	UpsertBuilding(ctx context.Context, seed repository.BuildingSeed) error
	UpsertWaypoint(ctx context.Context, seed repository.WaypointSeed) error
	UpsertConnection(ctx context.Context, seed repository.ConnectionSeed) error
}

// SeedService normalises campus dataset records and delegates persistence to the repository.
type SeedService struct {
	repo SeedRepository
}

// NewSeedService constructs a SeedService.
func NewSeedService(repo SeedRepository) *SeedService {
	return &SeedService{repo: repo}
}

// Prepare creates the indexes required before bulk loading.
func (s *SeedService) Prepare(ctx context.Context) error {
	return s.repo.EnsureIndexes(ctx)
}

// UpsertBuilding ingests a building payload.
func (s *SeedService) UpsertBuilding(ctx context.Context, input BuildingInput) error {
	navID := normalizeNavID(input.NavID)
	if navID == "" {
		return errors.New("building navID is required")
	}
	name := sanitizeString(input.Name)
	if name == "" {
		return errors.New("building name is required")
	}
	thumbnail := sanitizeString(input.Thumbnail)
	if thumbnail == "" {
		thumbnail = defaultThumbnail(name)
	}

	return s.repo.UpsertBuilding(ctx, repository.BuildingSeed{
		Area: domain.AreaName(sanitizeString(input.Area)),
		Entry: domain.BuildingEntry{
			BuildingName: name,
			Thumbnail:    thumbnail,
			NavID:        navID,
		},
	})
}

// UpsertWaypoint ingests a waypoint payload.
func (s *SeedService) UpsertWaypoint(ctx context.Context, input WaypointInput) error {
	navID := normalizeNavID(input.NavID)
	if navID == "" {
		return errors.New("waypoint navID is required")
	}
	building := sanitizeString(input.Building)
	if building == "" {
		return errors.New("waypoint building is required")
	}

	return s.repo.UpsertWaypoint(ctx, repository.WaypointSeed{
		Area: domain.AreaName(sanitizeString(input.Area)),
		Node: domain.NavigationNode{
			BuildingName: building,
			Floor:        sanitizeString(input.Floor),
			NavID:        navID,
			Image:        sanitizeString(input.Image),
		},
	})
}

// UpsertConnection ingests a walkable edge.
func (s *SeedService) UpsertConnection(ctx context.Context, input ConnectionInput) error {
	from, to := normalizeNavID(input.From), normalizeNavID(input.To)
	if from == "" || to == "" {
		return errors.New("connection endpoints are required")
	}
	return s.repo.UpsertConnection(ctx, repository.ConnectionSeed{
		FromNavID:               from,
		ToNavID:                 to,
		HasDetailedInstructions: input.HasDetailedInstructions,
	})
}
