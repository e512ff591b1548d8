package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/repository"
	"github.com/gophermaps/navigator/internal/service"
)

func memoryFactory(client *graph.MemoryClient, static bool) serviceFactory {
	return func(context.Context, rootOptions) (*service.NavigationService, func(), error) {
		catalog := domain.DefaultAreaCatalog()
		svc := service.NewNavigationService(repository.New(client, catalog), catalog).WithStaticAreas(static)
		return svc, func() {}, nil
	}
}

func execute(t *testing.T, factory serviceFactory, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(factory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAreasCommand_StaticCatalog(t *testing.T) {
	client := graph.NewMemoryClient()
	out, err := execute(t, memoryFactory(client, true), "areas")
	require.NoError(t, err)

	var areas []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &areas))
	require.Len(t, areas, 3)
	assert.Equal(t, "East Bank", areas[0]["name"])
	assert.Empty(t, client.ReadCalls())
}

func TestBuildingsCommand(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"building": graph.Node{Props: map[string]any{
			"buildingName": "Keller Hall",
			"thumbnail":    "KellerHall.jpg",
			"navID":        "EB01_KEY",
			"area":         "East Bank",
		}},
	}}})

	out, err := execute(t, memoryFactory(client, true), "buildings", "East Bank")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"buildingName":"Keller Hall","thumbnail":"KellerHall.jpg","navID":"EB01_KEY"}]`, out)
}

func TestBuildingsCommand_InvalidArea(t *testing.T) {
	_, err := execute(t, memoryFactory(graph.NewMemoryClient(), true), "buildings", "Moon Base")
	assert.ErrorIs(t, err, domain.ErrInvalidArea)
}

func TestRouteCommand_NotFound(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{})

	_, err := execute(t, memoryFactory(client, true), "route", "EB01_KEY", "SP01_KEY")
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)
}

func TestRouteCommand_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, memoryFactory(graph.NewMemoryClient(), true), "route", "EB01_KEY")
	assert.Error(t, err)
}

func TestFactoryErrorIsReturned(t *testing.T) {
	boom := errors.New("no graph")
	factory := func(context.Context, rootOptions) (*service.NavigationService, func(), error) {
		return nil, nil, boom
	}
	_, err := execute(t, factory, "destinations", "Keller Hall")
	assert.ErrorIs(t, err, boom)
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("API_VERSION", "")
	out, err := execute(t, nil, "version", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, service.Version)
}

func TestVersionCommand_HonoursOverride(t *testing.T) {
	t.Setenv("API_VERSION", "2.4.0-campus")
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"2.4.0-campus"}`, out)
}
