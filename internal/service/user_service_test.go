package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"freleefty/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// userRepoStub keeps users in memory and enforces unique ids, provider ids
// and names like the real tables do.
type userRepoStub struct {
	users     map[string]*models.User
	createErr error
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, u := range s.users {
		if u.ID == user.ID || u.ProviderID == user.ProviderID || u.Name == user.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	s.users[user.ID] = user
	return nil
}
func (s *userRepoStub) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}
func (s *userRepoStub) GetByProviderID(_ context.Context, providerID string) (*models.User, error) {
	for _, u := range s.users {
		if u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *userRepoStub) UpdateName(_ context.Context, id, name string, at time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, other := range s.users {
		if other.ID != id && other.Name == name {
			return gorm.ErrDuplicatedKey
		}
	}
	u.Name = name
	u.NameUpdatedAt = &at
	return nil
}
func (s *userRepoStub) SetNewArticleNotify(_ context.Context, id string, notify bool) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.NewArticleNotify = notify
	return nil
}

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("alice01"))
	for _, id := range []string{"", "has space", "ünicode", strings.Repeat("a", 21), "dash-ed"} {
		assertValidationError(t, ValidateUserID(id))
	}
}

func TestNormalizeUserName(t *testing.T) {
	name, err := NormalizeUserName("Jó Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jó Doe", name)

	for _, bad := range []string{"", " lead", "trail ", "two  spaces", strings.Repeat("n", 21)} {
		_, err := NormalizeUserName(bad)
		assertValidationError(t, err)
	}
}

func TestUserService_UpdateUserName(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	repo := newUserRepoStub(
		&models.User{ID: "alice", Name: "Alice"},
		&models.User{ID: "bob", Name: "Bob", NameUpdatedAt: &recent},
	)
	svc := NewUserService(repo)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("Rename", func(t *testing.T) {
		require.NoError(t, svc.UpdateUserName(ctx, "alice", "Alice Liddell"))
		assert.Equal(t, "Alice Liddell", repo.users["alice"].Name)
	})

	t.Run("Cooldown", func(t *testing.T) {
		err := svc.UpdateUserName(ctx, "bob", "Robert")
		assert.ErrorIs(t, err, models.ErrTooSoon)
	})

	t.Run("Cooldown over", func(t *testing.T) {
		svc.now = func() time.Time { return now.Add(nameChangeCooldown) }
		defer func() { svc.now = func() time.Time { return now } }()
		require.NoError(t, svc.UpdateUserName(ctx, "bob", "Robert"))
	})

	t.Run("Taken", func(t *testing.T) {
		repo.users["alice"].NameUpdatedAt = nil
		err := svc.UpdateUserName(ctx, "alice", "Robert")
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("Unknown user", func(t *testing.T) {
		err := svc.UpdateUserName(ctx, "carol", "Carol")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUserService_NewArticleNotify(t *testing.T) {
	repo := newUserRepoStub(&models.User{ID: "alice", Name: "Alice"})
	svc := NewUserService(repo)
	ctx := context.Background()

	notify, err := svc.GetNewArticleNotify(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, notify)

	require.NoError(t, svc.SetNewArticleNotify(ctx, "alice", true))
	notify, err = svc.GetNewArticleNotify(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, notify)

	assert.ErrorIs(t, svc.SetNewArticleNotify(ctx, "carol", true), models.ErrNotFound)
}
