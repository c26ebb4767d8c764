package service

import (
	"context"

	"freleefty/internal/models"
)

// ArticleLookup resolves a published article. Engagement services only
// need to know that the article is visible.
type ArticleLookup interface {
	GetSummary(ctx context.Context, id uint) (*models.ArticleSummary, error)
}

func requireArticle(ctx context.Context, articles ArticleLookup, id uint) error {
	if _, err := articles.GetSummary(ctx, id); err != nil {
		return notFound(err, "Article", id)
	}
	return nil
}
