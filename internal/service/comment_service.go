package service

import (
	"context"

	"freleefty/internal/models"
	"freleefty/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	articles    ArticleLookup
}

type CreateCommentInput struct {
	UserID    string
	ArticleID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    string
	CommentID uint
}

type ListUserCommentsInput struct {
	UserID   string
	BeforeID uint
	Limit    int
}

func NewCommentService(commentRepo repository.CommentRepository, articles ArticleLookup) *CommentService {
	return &CommentService{commentRepo: commentRepo, articles: articles}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.Validate(in.Content, validation.Required, validation.RuneLength(1, maxCommentLen)); err != nil {
		return nil, validationError("content", err)
	}
	if err := requireArticle(ctx, s.articles, in.ArticleID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ArticleID: in.ArticleID,
		UserID:    in.UserID,
		Content:   in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, articleID uint) ([]models.CommentView, error) {
	if err := requireArticle(ctx, s.articles, articleID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByArticle(ctx, articleID)
}

func (s *CommentService) ListUserComments(ctx context.Context, in ListUserCommentsInput) ([]models.CommentView, error) {
	return s.commentRepo.ListByUser(ctx, in.UserID, in.BeforeID, pageSize(in.Limit))
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return notFound(err, "Comment", in.CommentID)
	}
	if comment.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return notFound(err, "Comment", in.CommentID)
	}
	return nil
}
