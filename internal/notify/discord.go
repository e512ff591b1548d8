package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	colorInfo  = 0x0085ff
	colorError = 0xc40000

	defaultUsername = "GopherMaps API"
	maxRestRetries  = 3
)

// DiscordNotifier posts notices as Discord webhook embeds. Rate limits and
// gateway errors are retried by the discordgo session.
type DiscordNotifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
	source    string
}

// DiscordOption customises a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient replaces the session's HTTP client.
func WithHTTPClient(client *http.Client) DiscordOption {
	return func(n *DiscordNotifier) {
		if client != nil {
			n.session.Client = client
		}
	}
}

// NewDiscordNotifier creates a notifier for webhookURL, which must have the
// form https://discord.com/api/webhooks/{id}/{token}. source is shown as the
// embed author, naming the component that raised the notice.
func NewDiscordNotifier(webhookURL, source string, opts ...DiscordOption) (*DiscordNotifier, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.MaxRestRetries = maxRestRetries
	session.Client = &http.Client{Timeout: 10 * time.Second}

	n := &DiscordNotifier{session: session, webhookID: id, token: token, source: source}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify posts one embed.
func (n *DiscordNotifier) Notify(ctx context.Context, severity Severity, title, message string, fields ...Field) error {
	_, err := n.session.WebhookExecute(n.webhookID, n.token, false, n.params(severity, title, message, fields), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

func (n *DiscordNotifier) params(severity Severity, title, message string, fields []Field) *discordgo.WebhookParams {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: message,
		Color:       colorInfo,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if severity == SeverityError {
		embed.Color = colorError
	}
	if n.source != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: n.source}
	}
	for _, f := range fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Title, Value: f.Value, Inline: f.Inline})
	}
	return &discordgo.WebhookParams{
		Username: defaultUsername,
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "webhooks" && i+2 < len(parts) && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("webhook url %q has no /webhooks/{id}/{token} path", u.Redacted())
}

// New returns a DiscordNotifier when webhookURL is set and valid, and the
// fallback otherwise.
func New(webhookURL, source string, fallback *LogNotifier) Notifier {
	if fallback == nil {
		fallback = NewLogNotifier(nil)
	}
	if webhookURL == "" {
		return fallback
	}
	n, err := NewDiscordNotifier(webhookURL, source)
	if err != nil {
		fallback.logger.Warn("discord notifier disabled", "error", err)
		return fallback
	}
	return n
}
