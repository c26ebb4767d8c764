package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"freleefty/internal/models"
	"freleefty/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const nameChangeCooldown = 7 * 24 * time.Hour

// Words separated by single spaces, no leading or trailing blanks.
var userNamePattern = regexp.MustCompile(`^\S+( \S+)*$`)

type UserService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, now: utcNow}
}

// ValidateUserID checks a chosen user id: 1 to 20 ASCII letters or digits.
func ValidateUserID(id string) error {
	err := validation.Validate(id, validation.Required, validation.Length(1, 20), is.Alphanumeric)
	if err != nil {
		return validationError("id", err)
	}
	return nil
}

// NormalizeUserName returns name in NFC form, or a validation error.
func NormalizeUserName(name string) (string, error) {
	name = norm.NFC.String(name)
	err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, 20),
		validation.Match(userNamePattern).Error("words must be separated by single spaces"),
	)
	if err != nil {
		return "", validationError("name", err)
	}
	return name, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	return user, nil
}

// UpdateUserName renames the user. A user may rename once per cooldown period.
func (s *UserService) UpdateUserName(ctx context.Context, id, name string) error {
	name, err := NormalizeUserName(name)
	if err != nil {
		return err
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if user.NameUpdatedAt != nil {
		if elapsed := now.Sub(*user.NameUpdatedAt); elapsed < nameChangeCooldown {
			return models.NewTooSoonError("Name change", nameChangeCooldown-elapsed)
		}
	}

	if err := s.users.UpdateName(ctx, id, name, now); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Name is already taken")
		}
		return notFound(err, "User", id)
	}
	return nil
}

func (s *UserService) GetNewArticleNotify(ctx context.Context, id string) (bool, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	return user.NewArticleNotify, nil
}

func (s *UserService) SetNewArticleNotify(ctx context.Context, id string, notify bool) error {
	return notFound(s.users.SetNewArticleNotify(ctx, id, notify), "User", id)
}
