// Package webhook posts Discord-style embed messages to configured endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/observability"

	"golang.org/x/sync/errgroup"
)

const (
	sendTimeout    = 10 * time.Second
	maxConcurrency = 8
)

// Embed is one rich embed of a webhook message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Type        string       `json:"type"`
	Description string       `json:"description,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	URL         string       `json:"url,omitempty"`
}

type EmbedAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type payload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

// Client sends embeds under a fixed sender identity.
type Client struct {
	http      *http.Client
	username  string
	avatarURL string
}

func NewClient(username, avatarURL string) *Client {
	return &Client{
		http:      &http.Client{Timeout: sendTimeout},
		username:  username,
		avatarURL: avatarURL,
	}
}

// SendEmbed posts a single embed to url.
func (c *Client) SendEmbed(ctx context.Context, url string, embed Embed) error {
	if embed.Type == "" {
		embed.Type = "rich"
	}
	body, err := json.Marshal(payload{Username: c.username, AvatarURL: c.avatarURL, Embeds: []Embed{embed}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook: post: HTTP %d", resp.StatusCode)
	}
	return nil
}

// HookSource lists the configured webhooks.
type HookSource interface {
	List(ctx context.Context) ([]models.Webhook, error)
}

// ArticleSource resolves the article being announced.
type ArticleSource interface {
	GetSummary(ctx context.Context, id uint) (*models.ArticleSummary, error)
}

// Dispatcher announces events to every configured webhook. Delivery is
// best-effort: failures are logged and counted, never returned.
type Dispatcher struct {
	client   *Client
	hooks    HookSource
	articles ArticleSource
	siteURL  string
}

func NewDispatcher(client *Client, hooks HookSource, articles ArticleSource, siteURL string) *Dispatcher {
	return &Dispatcher{
		client:   client,
		hooks:    hooks,
		articles: articles,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
	}
}

// NotifyNewArticle posts the article's title and author to all webhooks
// concurrently.
func (d *Dispatcher) NotifyNewArticle(ctx context.Context, articleID uint) {
	article, err := d.articles.GetSummary(ctx, articleID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "webhook: article to announce not found",
			"article_id", articleID, "error", err)
		return
	}
	hooks, err := d.hooks.List(ctx)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "webhook: failed to list webhooks", "error", err)
		return
	}

	embed := Embed{
		Title: article.Title,
		Author: &EmbedAuthor{
			Name: article.AuthorName,
			URL:  fmt.Sprintf("%s/users/%s/", d.siteURL, article.AuthorID),
		},
		URL: fmt.Sprintf("%s/articles/%d", d.siteURL, articleID),
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrency)
	for _, hook := range hooks {
		g.Go(func() error {
			d.deliver(ctx, hook.URL, embed)
			return nil
		})
	}
	_ = g.Wait()
}

// Greet welcomes a newly added webhook.
func (d *Dispatcher) Greet(ctx context.Context, url string) {
	d.deliver(ctx, url, Embed{
		Title:       "Hello!",
		Description: "New articles will be announced here from now on.",
		URL:         d.siteURL + "/",
	})
}

// Farewell says goodbye to a removed webhook.
func (d *Dispatcher) Farewell(ctx context.Context, url string) {
	d.deliver(ctx, url, Embed{
		Title:       "Goodbye!",
		Description: "New articles will no longer be announced here.",
		URL:         d.siteURL + "/",
	})
}

func (d *Dispatcher) deliver(ctx context.Context, url string, embed Embed) {
	err := d.client.SendEmbed(ctx, url, embed)
	observability.WebhookDeliveries.WithLabelValues(observability.ResultLabel(err)).Inc()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "webhook delivery failed", "error", err)
	}
}
