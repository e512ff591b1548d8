package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/repository"
)

type stubSeedRepository struct {
	mu          sync.Mutex
	indexed     bool
	buildings   []repository.BuildingSeed
	waypoints   []repository.WaypointSeed
	connections []repository.ConnectionSeed
	failNavID   string
}

func (s *stubSeedRepository) EnsureIndexes(context.Context) error {
	s.indexed = true
	return nil
}

func (s *stubSeedRepository) UpsertBuilding(_ context.Context, seed repository.BuildingSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seed.Entry.NavID == s.failNavID {
		return fmt.Errorf("%w: %q", domain.ErrInvalidArea, seed.Area)
	}
	s.buildings = append(s.buildings, seed)
	return nil
}

func (s *stubSeedRepository) UpsertWaypoint(_ context.Context, seed repository.WaypointSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waypoints = append(s.waypoints, seed)
	return nil
}

func (s *stubSeedRepository) UpsertConnection(_ context.Context, seed repository.ConnectionSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections = append(s.connections, seed)
	return nil
}

func TestSeedService_UpsertBuildingNormalises(t *testing.T) {
	repo := &stubSeedRepository{}
	svc := NewSeedService(repo)

	err := svc.UpsertBuilding(context.Background(), BuildingInput{Area: " East  Bank ", Name: "Keller   Hall", NavID: " KEL KEY "})
	require.NoError(t, err)
	require.Len(t, repo.buildings, 1)

	got := repo.buildings[0]
	assert.Equal(t, domain.AreaName("East Bank"), got.Area)
	assert.Equal(t, domain.BuildingEntry{BuildingName: "Keller Hall", Thumbnail: "KellerHall.jpg", NavID: "KEL_KEY"}, got.Entry)
}

func TestSeedService_RejectsIncompleteRecords(t *testing.T) {
	svc := NewSeedService(&stubSeedRepository{})
	ctx := context.Background()

	assert.Error(t, svc.UpsertBuilding(ctx, BuildingInput{Name: "Keller Hall"}))
	assert.Error(t, svc.UpsertBuilding(ctx, BuildingInput{NavID: "KEL"}))
	assert.Error(t, svc.UpsertWaypoint(ctx, WaypointInput{NavID: "KEL-1"}))
	assert.Error(t, svc.UpsertWaypoint(ctx, WaypointInput{Building: "Keller Hall"}))
	assert.Error(t, svc.UpsertConnection(ctx, ConnectionInput{From: "A"}))
}

func TestBulkIngestor_LoadsDataset(t *testing.T) {
	repo := &stubSeedRepository{}
	svc := NewSeedService(repo)
	ingestor := NewBulkIngestor(svc, 3)
	ctx := context.Background()

	require.NoError(t, svc.Prepare(ctx))
	assert.True(t, repo.indexed)

	var waypoints []WaypointInput
	for i := 0; i < 25; i++ {
		waypoints = append(waypoints, WaypointInput{Area: "East Bank", Building: "Keller Hall", Floor: fmt.Sprint(i % 4), NavID: fmt.Sprintf("KEL-%02d", i)})
	}
	require.NoError(t, ingestor.IngestWaypoints(ctx, waypoints))
	assert.Len(t, repo.waypoints, 25)

	require.NoError(t, ingestor.IngestConnections(ctx, []ConnectionInput{{From: "KEL-00", To: "KEL-01", HasDetailedInstructions: true}}))
	require.Len(t, repo.connections, 1)
	assert.True(t, repo.connections[0].HasDetailedInstructions)

	require.NoError(t, ingestor.IngestBuildings(ctx, nil))
}

func TestBulkIngestor_CollectsErrors(t *testing.T) {
	repo := &stubSeedRepository{failNavID: "BAD"}
	ingestor := NewBulkIngestor(NewSeedService(repo), 0)

	err := ingestor.IngestBuildings(context.Background(), []BuildingInput{
		{Area: "East Bank", Name: "Keller Hall", NavID: "KEL"},
		{Area: "Moon", Name: "Crater", NavID: "BAD"},
		{Area: "East Bank", Name: "", NavID: "X"},
	})
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Len(t, taskErr.Errors, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidArea)
	assert.Len(t, repo.buildings, 1)
}

func TestBulkIngestor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mem := graph.NewMemoryClient()
	writer := repository.NewSeedWriter(mem, domain.DefaultAreaCatalog())
	ingestor := NewBulkIngestor(NewSeedService(writer), 2)

	err := ingestor.IngestConnections(ctx, []ConnectionInput{{From: "A", To: "B"}, {From: "B", To: "C"}})
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(mem.WriteCalls()), 2)
}

func TestTaskError_Message(t *testing.T) {
	var e TaskError
	assert.Equal(t, "no errors", e.Error())
	e.append(errors.New("a"))
	assert.Equal(t, "a", e.Error())
	e.append(errors.New("b"))
	assert.Equal(t, "2 errors: a; b;", e.Error())
}
