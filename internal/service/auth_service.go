package service

import (
	"context"
	"errors"
	"time"

	"freleefty/internal/cache"
	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access token issuer and audience.
const (
	TokenIssuer   = "freleefty-api"
	TokenAudience = "freleefty-client"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
	registerCodeTTL = 5 * time.Minute
)

// Identity is a user as known to the OAuth provider.
type Identity struct {
	ID       string
	Nickname string
}

// IdentityProvider exchanges an OAuth authorization code for the
// provider's view of the user.
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*Identity, error)
}

type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *models.User `json:"user"`
}

// LoginResult is either a token pair or, for an unknown identity, a
// registration code to be redeemed with Register. ProviderName is the
// nickname the provider reported, offered as the default name.
type LoginResult struct {
	Register     bool       `json:"register"`
	Code         string     `json:"code,omitempty"`
	ProviderName string     `json:"provider_name,omitempty"`
	Tokens       *TokenPair `json:"tokens,omitempty"`
}

type RegisterInput struct {
	Code string
	ID   string
	Name string
}

type AuthService struct {
	users    repository.UserRepository
	tokens   *cache.TokenStore
	provider IdentityProvider
	secret   []byte
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *cache.TokenStore, provider IdentityProvider, secret string) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		provider: provider,
		secret:   []byte(secret),
		now:      time.Now,
	}
}

var errRegisterCodeExpired = &models.AppError{Code: models.CodeNotFound, Message: "Registration code expired"}

func (s *AuthService) LoginWithCode(ctx context.Context, code string) (*LoginResult, error) {
	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, &models.AppError{Code: models.CodeUnauthorized, Message: "Login failed", Err: err}
	}

	user, err := s.users.GetByProviderID(ctx, identity.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.registerResult(ctx, identity.ID, identity.Nickname)
	}
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair}, nil
}

func (s *AuthService) registerResult(ctx context.Context, providerID, nickname string) (*LoginResult, error) {
	code, err := s.tokens.Issue(ctx, cache.RegisterPrefix, providerID, registerCodeTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Register: true, Code: code, ProviderName: nickname}, nil
}

// Register redeems a registration code and creates the user. When the id or
// name is taken it returns a conflict together with a fresh registration
// code, since the old one has been consumed.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	if err := ValidateUserID(in.ID); err != nil {
		return nil, err
	}
	name, err := NormalizeUserName(in.Name)
	if err != nil {
		return nil, err
	}

	providerID, err := s.tokens.Consume(ctx, cache.RegisterPrefix, in.Code)
	if errors.Is(err, cache.ErrTokenNotFound) {
		return nil, errRegisterCodeExpired
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{ID: in.ID, ProviderID: providerID, Name: name, Role: models.RoleUser}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if _, lookupErr := s.users.GetByProviderID(ctx, providerID); lookupErr == nil {
			return nil, models.NewConflictError("Account is already registered")
		}
		res, codeErr := s.registerResult(ctx, providerID, "")
		if codeErr != nil {
			return nil, codeErr
		}
		return res, models.NewConflictError("User ID or name is already taken")
	}

	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair}, nil
}

// Refresh rotates a refresh token. Each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.Consume(ctx, cache.RefreshPrefix, refreshToken)
	if errors.Is(err, cache.ErrTokenNotFound) {
		return nil, models.NewUnauthorizedError("Refresh token expired")
	}
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewUnauthorizedError("User no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Logout drops the refresh token and, when jti is set, blocks the access
// token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, refreshToken, jti string, expiresAt time.Time) error {
	if refreshToken != "" {
		if err := s.tokens.Revoke(ctx, cache.RefreshPrefix, refreshToken); err != nil {
			return err
		}
	}
	if jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.tokens.Mark(ctx, cache.BlacklistPrefix, jti, ttl)
}

// IsRevoked reports whether the access token with jti was logged out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.tokens.Marked(ctx, cache.BlacklistPrefix, jti)
}

// DevLogin signs in as userID, creating the user if needed. Only wired in
// development.
func (s *AuthService) DevLogin(ctx context.Context, userID string) (*TokenPair, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &models.User{ID: userID, ProviderID: "dev-" + userID, Name: userID, Role: models.RoleUser}
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := s.tokens.Issue(ctx, cache.RefreshPrefix, user.ID, refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(accessTokenTTL / time.Second),
		User:         user,
	}, nil
}

// IssueAccessToken signs a short-lived HS256 access token for user.
func (s *AuthService) IssueAccessToken(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iss":  TokenIssuer,
		"aud":  TokenAudience,
		"exp":  now.Add(accessTokenTTL).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
