package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"GRAPH_URI", "AURA_URI", "GRAPH_QUERY_TIMEOUT", "NAV_AREAS_FROM_GRAPH", "SERVER_PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.HTTP.Port)
	assert.Equal(t, defaultQueryTimeout, cfg.Graph.QueryTimeout)
	assert.Equal(t, defaultConnectRetries, cfg.Graph.ConnectRetries)
	assert.True(t, cfg.Navigation.AreasFromGraph)
	assert.ErrorIs(t, cfg.RequireGraph(), ErrMissingGraphURI)
}

func TestLoad_LegacyAuraFallback(t *testing.T) {
	t.Setenv("GRAPH_URI", "")
	t.Setenv("AURA_URI", "neo4j+s://legacy.databases.neo4j.io")
	t.Setenv("GRAPH_USERNAME", "")
	t.Setenv("AURA_USERNAME", "neo4j")
	t.Setenv("GRAPH_PASSWORD", "primary")
	t.Setenv("AURA_PASSWORD", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "neo4j+s://legacy.databases.neo4j.io", cfg.Graph.URI)
	assert.Equal(t, "neo4j", cfg.Graph.Username)
	assert.Equal(t, "primary", cfg.Graph.Password)
	assert.NoError(t, cfg.RequireGraph())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GRAPH_QUERY_TIMEOUT", "750ms")
	t.Setenv("NAV_AREA_CACHE_TTL", "10m")
	t.Setenv("NAV_AREAS_FROM_GRAPH", "false")
	t.Setenv("NAV_AREAS_FILE", "/etc/navigator/areas.yaml")
	t.Setenv("API_VERSION", "2.1.0")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Graph.QueryTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Navigation.AreaCacheTTL)
	assert.False(t, cfg.Navigation.AreasFromGraph)
	assert.Equal(t, "/etc/navigator/areas.yaml", cfg.Navigation.AreasFile)
	assert.Equal(t, "2.1.0", cfg.Navigation.APIVersion)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("GRAPH_QUERY_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("GRAPH_QUERY_TIMEOUT", "-1s")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("GRAPH_QUERY_TIMEOUT", "")
	t.Setenv("SERVER_PORT", "70000")
	_, err = Load()
	assert.Error(t, err)
}
