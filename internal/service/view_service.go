package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"freleefty/internal/cache"
	"freleefty/internal/middleware"
	"freleefty/internal/repository"
)

const viewTokenTTL = time.Hour

// ViewService counts reads. A client first obtains a view token for the
// article and later redeems it, so one page load counts at most once.
type ViewService struct {
	tokens   *cache.TokenStore
	views    repository.ViewRepository
	articles ArticleLookup
}

func NewViewService(tokens *cache.TokenStore, views repository.ViewRepository, articles ArticleLookup) *ViewService {
	return &ViewService{tokens: tokens, views: views, articles: articles}
}

func (s *ViewService) IssueViewToken(ctx context.Context, articleID uint) (string, error) {
	if err := requireArticle(ctx, s.articles, articleID); err != nil {
		return "", err
	}
	return s.tokens.Issue(ctx, cache.ViewPrefix, strconv.FormatUint(uint64(articleID), 10), viewTokenTTL)
}

// SubmitView redeems a view token. Unknown or used tokens are ignored.
func (s *ViewService) SubmitView(ctx context.Context, token string) error {
	value, err := s.tokens.Consume(ctx, cache.ViewPrefix, token)
	if errors.Is(err, cache.ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	articleID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "malformed view token value", "value", value)
		return nil
	}
	return s.views.Create(ctx, uint(articleID))
}
