package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport sends every request to the test server, keeping the path.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestNotifier(t *testing.T, srv *httptest.Server, source string) *DiscordNotifier {
	t.Helper()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	n, err := NewDiscordNotifier("https://discord.com/api/webhooks/1234/secret-token", source,
		WithHTTPClient(&http.Client{Transport: rewriteTransport{target: target}}))
	require.NoError(t, err)
	return n
}

func TestDiscordNotifier_PostsEmbed(t *testing.T) {
	var (
		got  discordgo.WebhookParams
		path string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv, "NEO4J")
	err := n.Notify(context.Background(), SeverityError, "Neo4j Authentication Failed", "bad credentials",
		Field{Title: "uri", Value: "neo4j://localhost", Inline: true})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "/webhooks/1234/secret-token"), path)
	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]
	assert.Equal(t, defaultUsername, got.Username)
	assert.Equal(t, colorError, e.Color)
	require.NotNil(t, e.Author)
	assert.Equal(t, "NEO4J", e.Author.Name)
	assert.Equal(t, "bad credentials", e.Description)
	require.Len(t, e.Fields, 1)
	assert.True(t, e.Fields[0].Inline)
}

func TestDiscordNotifier_InfoColour(t *testing.T) {
	n, err := NewDiscordNotifier("https://discord.com/api/webhooks/1/t", "")
	require.NoError(t, err)
	p := n.params(SeverityInfo, "Notice", "connected", nil)
	assert.Equal(t, colorInfo, p.Embeds[0].Color)
	assert.Nil(t, p.Embeds[0].Author)
}

func TestDiscordNotifier_RetriesBadGateway(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newTestNotifier(t, srv, "FastAPI").Notify(context.Background(), SeverityInfo, "Notice", "up")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDiscordNotifier_ClientErrorIsReturned(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Unknown Webhook","code":10015}`))
	}))
	defer srv.Close()

	err := newTestNotifier(t, srv, "FastAPI").Notify(context.Background(), SeverityInfo, "Notice", "up")
	var restErr *discordgo.RESTError
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, http.StatusNotFound, restErr.Response.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := parseWebhookURL("https://discord.com/api/v10/webhooks/987/abc_DEF")
	require.NoError(t, err)
	assert.Equal(t, "987", id)
	assert.Equal(t, "abc_DEF", token)

	for _, raw := range []string{"https://discord.com/api/webhooks/987", "http://hook", "://bad"} {
		_, _, err := parseWebhookURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	n := New("", "navigator", NewLogNotifier(logger))
	require.NoError(t, n.Notify(context.Background(), SeverityError, "Startup", "graph unreachable", Field{Title: "uri", Value: "neo4j://db"}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "graph unreachable", entry["msg"])
	assert.Equal(t, "neo4j://db", entry["uri"])
	assert.Equal(t, "notify", entry["component"])

	_, isDiscord := New("https://discord.com/api/webhooks/1/t", "navigator", NewLogNotifier(logger)).(*DiscordNotifier)
	assert.True(t, isDiscord)

	_, isLog := New("http://hook", "navigator", NewLogNotifier(logger)).(*LogNotifier)
	assert.True(t, isLog)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "error", SeverityError.String())
}
