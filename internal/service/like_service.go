package service

import (
	"context"
	"errors"

	"freleefty/internal/models"
	"freleefty/internal/repository"

	"gorm.io/gorm"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	articles ArticleLookup
}

func NewLikeService(likeRepo repository.LikeRepository, articles ArticleLookup) *LikeService {
	return &LikeService{likeRepo: likeRepo, articles: articles}
}

// Like records the user's like. Liking twice is an invalid action.
func (s *LikeService) Like(ctx context.Context, articleID uint, userID string) error {
	if err := requireArticle(ctx, s.articles, articleID); err != nil {
		return err
	}
	err := s.likeRepo.Create(ctx, &models.Like{ArticleID: articleID, UserID: userID})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrInvalidAction
	}
	return err
}

// Unlike removes the user's like. Removing an absent like is an invalid action.
func (s *LikeService) Unlike(ctx context.Context, articleID uint, userID string) error {
	removed, err := s.likeRepo.Delete(ctx, articleID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return models.ErrInvalidAction
	}
	return nil
}

func (s *LikeService) ListLikers(ctx context.Context, articleID uint) ([]models.Liker, error) {
	if err := requireArticle(ctx, s.articles, articleID); err != nil {
		return nil, err
	}
	return s.likeRepo.ListLikers(ctx, articleID)
}
