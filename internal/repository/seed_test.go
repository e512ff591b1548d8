package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
)

func TestSeedWriter_EnsureIndexes(t *testing.T) {
	mem := graph.NewMemoryClient()
	w := NewSeedWriter(mem, domain.DefaultAreaCatalog())

	if err := w.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	calls := mem.WriteCalls()
	if len(calls) != len(indexStatements) {
		t.Fatalf("expected %d index statements, got %d", len(indexStatements), len(calls))
	}
	if !strings.Contains(calls[0].Query, "(n:Building) ON (n.navID)") {
		t.Fatalf("expected navID index first, got %s", calls[0].Query)
	}
}

func TestSeedWriter_UpsertBuilding(t *testing.T) {
	mem := graph.NewMemoryClient()
	w := NewSeedWriter(mem, domain.DefaultAreaCatalog())

	err := w.UpsertBuilding(context.Background(), BuildingSeed{
		Area:  "East Bank",
		Entry: domain.BuildingEntry{BuildingName: "Keller Hall", Thumbnail: "Keller.jpg", NavID: "KEL-KEY"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Query, "SET b:BuildingKey:`EastBank`") {
		t.Fatalf("expected area label from catalog, got %s", calls[0].Query)
	}
	props, ok := calls[0].Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", calls[0].Params["props"])
	}
	if props["area"] != "East Bank" || props["buildingName"] != "Keller Hall" {
		t.Fatalf("unexpected props: %+v", props)
	}
}

func TestSeedWriter_RejectsUncataloguedArea(t *testing.T) {
	mem := graph.NewMemoryClient()
	w := NewSeedWriter(mem, domain.DefaultAreaCatalog())

	err := w.UpsertBuilding(context.Background(), BuildingSeed{
		Area:  "Foo`) DETACH DELETE n //",
		Entry: domain.BuildingEntry{BuildingName: "X", Thumbnail: "x.jpg", NavID: "X"},
	})
	if !errors.Is(err, domain.ErrInvalidArea) {
		t.Fatalf("expected ErrInvalidArea, got %v", err)
	}
	err = w.UpsertWaypoint(context.Background(), WaypointSeed{Area: "Moon", Node: domain.NavigationNode{NavID: "X", BuildingName: "X"}})
	if !errors.Is(err, domain.ErrInvalidArea) {
		t.Fatalf("expected ErrInvalidArea, got %v", err)
	}
	if got := len(mem.WriteCalls()); got != 0 {
		t.Fatalf("expected no writes, got %d", got)
	}
}

func TestSeedWriter_UpsertWaypointNumericFloor(t *testing.T) {
	mem := graph.NewMemoryClient()
	w := NewSeedWriter(mem, domain.DefaultAreaCatalog())

	for _, floor := range []string{"3", "G"} {
		err := w.UpsertWaypoint(context.Background(), WaypointSeed{
			Area: "West Bank",
			Node: domain.NavigationNode{BuildingName: "Anderson Hall", Floor: floor, NavID: "AND-" + floor},
		})
		if err != nil {
			t.Fatalf("floor %q: %v", floor, err)
		}
	}

	calls := mem.WriteCalls()
	if got := calls[0].Params["props"].(map[string]any)["floor"]; got != int64(3) {
		t.Fatalf("expected numeric floor stored as int64, got %#v", got)
	}
	if got := calls[1].Params["props"].(map[string]any)["floor"]; got != "G" {
		t.Fatalf("expected named floor stored as string, got %#v", got)
	}
	if !strings.Contains(calls[0].Query, "SET n:`WestBank`") {
		t.Fatalf("unexpected query %s", calls[0].Query)
	}
}

func TestSeedWriter_UpsertConnection(t *testing.T) {
	mem := graph.NewMemoryClient()
	w := NewSeedWriter(mem, domain.DefaultAreaCatalog())

	if err := w.UpsertConnection(context.Background(), ConnectionSeed{FromNavID: "A", ToNavID: "A"}); err == nil {
		t.Fatal("expected self-loop to be rejected")
	}
	if err := w.UpsertConnection(context.Background(), ConnectionSeed{FromNavID: "A"}); err == nil {
		t.Fatal("expected missing endpoint to be rejected")
	}
	if err := w.UpsertConnection(context.Background(), ConnectionSeed{FromNavID: "A", ToNavID: "B", HasDetailedInstructions: true}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(calls))
	}
	if calls[0].Params["hasDetailedInstructions"] != true {
		t.Fatalf("unexpected params: %+v", calls[0].Params)
	}
}

func TestQuoteLabel(t *testing.T) {
	if got := quoteLabel("East`Bank"); got != "`East``Bank`" {
		t.Fatalf("unexpected quoting %s", got)
	}
}
