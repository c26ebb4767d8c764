package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freleefty/internal/models"
	"freleefty/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// CategoryService manages the category tree and article tagging. Tree
// edits are admin-only; authors tag their own articles with leaves.
type CategoryService struct {
	store *repository.Store
}

type CreateCategoryInput struct {
	Name     string
	ParentID *uint
	IsGroup  bool
}

// UpdateCategoryInput carries a partial update. Nil fields are left alone;
// SetParent with a nil ParentID moves the category to the root.
type UpdateCategoryInput struct {
	ID        uint
	Name      *string
	SetParent bool
	ParentID  *uint
	IsGroup   *bool
}

func NewCategoryService(store *repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

// ListCategories returns the whole tree: roots first, each with its
// children, ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context, role models.Role) ([]*models.CategoryNode, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	categories, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildCategoryTree(categories), nil
}

func buildCategoryTree(categories []models.Category) []*models.CategoryNode {
	nodes := make(map[uint]*models.CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &models.CategoryNode{Category: c, Children: []*models.CategoryNode{}}
	}
	roots := []*models.CategoryNode{}
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

func (s *CategoryService) CreateCategory(ctx context.Context, role models.Role, in CreateCategoryInput) (*models.Category, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := validateCategoryName(in.Name); err != nil {
		return nil, err
	}

	category := &models.Category{Name: in.Name, IsGroup: in.IsGroup, ParentID: in.ParentID}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if in.ParentID != nil {
			if err := requireGroup(ctx, tx, *in.ParentID); err != nil {
				return err
			}
		}
		return tx.Categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, role models.Role, in UpdateCategoryInput) (*models.Category, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if in.Name != nil {
		if err := validateCategoryName(*in.Name); err != nil {
			return nil, err
		}
		fields["name"] = *in.Name
	}

	var updated *models.Category
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Categories.GetByID(ctx, in.ID); err != nil {
			return notFound(err, "Category", in.ID)
		}

		if in.SetParent {
			if in.ParentID != nil {
				if err := requireGroup(ctx, tx, *in.ParentID); err != nil {
					return err
				}
				if err := rejectCycle(ctx, tx, in.ID, *in.ParentID); err != nil {
					return err
				}
				fields["parent_id"] = *in.ParentID
			} else {
				fields["parent_id"] = nil
			}
		}

		if in.IsGroup != nil {
			if *in.IsGroup {
				n, err := tx.Categories.CountArticles(ctx, in.ID)
				if err != nil {
					return err
				}
				if n > 0 {
					return models.NewValidationError("is_group: the category has articles")
				}
			} else {
				n, err := tx.Categories.CountChildren(ctx, in.ID)
				if err != nil {
					return err
				}
				if n > 0 {
					return models.NewValidationError("is_group: the category has children")
				}
			}
			fields["is_group"] = *in.IsGroup
		}

		if err := tx.Categories.Update(ctx, in.ID, fields); err != nil {
			return notFound(err, "Category", in.ID)
		}
		var err error
		updated, err = tx.Categories.GetByID(ctx, in.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, role models.Role, id uint) error {
	if err := requireAdmin(role); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		return notFound(tx.Categories.Delete(ctx, id), "Category", id)
	})
}

// ArticleCategories lists the categories an article is filed under.
func (s *CategoryService) ArticleCategories(ctx context.Context, articleID uint) ([]models.Category, error) {
	if _, err := s.store.Articles.GetByID(ctx, articleID); err != nil {
		return nil, notFound(err, "Article", articleID)
	}
	return s.store.Categories.ListForArticle(ctx, articleID)
}

// SetArticleCategories replaces an article's categories. Only the author
// or an admin may do this, and only leaf categories are accepted.
func (s *CategoryService) SetArticleCategories(ctx context.Context, articleID uint, userID string, categoryIDs []uint) ([]models.Category, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User", userID)
	}
	ids := dedupeIDs(categoryIDs)

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		article, err := tx.Articles.GetByID(ctx, articleID)
		if err != nil {
			return notFound(err, "Article", articleID)
		}
		if article.AuthorID != userID && !user.IsAdmin() {
			return models.NewForbiddenError("You can only categorize your own articles")
		}
		for _, id := range ids {
			category, err := tx.Categories.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewValidationError(fmt.Sprintf("categories: category %d does not exist", id))
				}
				return err
			}
			if category.IsGroup {
				return models.NewValidationError(fmt.Sprintf("categories: category %d is a group", id))
			}
		}
		return tx.Categories.SetForArticle(ctx, articleID, ids)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Categories.ListForArticle(ctx, articleID)
}

func validateCategoryName(name string) error {
	if err := validation.Validate(strings.TrimSpace(name), validation.Required); err != nil {
		return validationError("name", err)
	}
	if err := validation.Validate(name, validation.RuneLength(1, 255)); err != nil {
		return validationError("name", err)
	}
	return nil
}

func requireGroup(ctx context.Context, store *repository.Store, parentID uint) error {
	parent, err := store.Categories.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewValidationError("parent_id: the parent category does not exist")
		}
		return err
	}
	if !parent.IsGroup {
		return models.NewValidationError("parent_id: the parent category is not a group")
	}
	return nil
}

// rejectCycle walks up from parentID and fails if it reaches id.
func rejectCycle(ctx context.Context, store *repository.Store, id, parentID uint) error {
	seen := map[uint]bool{}
	for cur := &parentID; cur != nil; {
		if *cur == id {
			return models.NewValidationError("parent_id: a category cannot be placed under itself")
		}
		if seen[*cur] {
			return nil
		}
		seen[*cur] = true
		c, err := store.Categories.GetByID(ctx, *cur)
		if err != nil {
			return notFound(err, "Category", *cur)
		}
		cur = c.ParentID
	}
	return nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
