package server

import (
	"errors"
	"strings"
	"time"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// accessClaims is what AuthRequired extracts from a valid access token.
type accessClaims struct {
	UserID    string
	Role      models.Role
	JTI       string
	ExpiresAt time.Time
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// parseAccessToken validates signature, expiry, issuer and audience.
func (s *Server) parseAccessToken(tokenString string) (*accessClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.TokenIssuer),
		jwt.WithAudience(service.TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	out := &accessClaims{UserID: sub}
	if role, ok := claims["role"].(string); ok {
		out.Role = models.Role(role)
	}
	if jti, ok := claims["jti"].(string); ok {
		out.JTI = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// errTokenRevoked marks an access token that was logged out.
var errTokenRevoked = errors.New("token revoked")

// authenticate validates the bearer token and stores the user id, role, jti
// and expiry in locals.
func (s *Server) authenticate(c *fiber.Ctx, tokenString string) error {
	claims, err := s.parseAccessToken(tokenString)
	if err != nil {
		return err
	}

	if claims.JTI != "" {
		revoked, err := s.authService.IsRevoked(c.UserContext(), claims.JTI)
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "revocation check failed", "error", err)
		} else if revoked {
			return errTokenRevoked
		}
	}

	c.Locals("userID", claims.UserID)
	c.Locals("role", claims.Role)
	c.Locals("jti", claims.JTI)
	c.Locals("tokenExpiresAt", claims.ExpiresAt)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))
	return nil
}

// AuthRequired returns the authentication middleware.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		if err := s.authenticate(c, tokenString); errors.Is(err, errTokenRevoked) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		} else if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		return c.Next()
	}
}

// AuthOptional identifies the caller when a valid token is present and lets
// the request through as anonymous otherwise.
func (s *Server) AuthOptional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := bearerToken(c); tokenString != "" {
			if err := s.authenticate(c, tokenString); err != nil {
				middleware.Logger.DebugContext(c.UserContext(), "ignoring bearer token", "error", err)
			}
		}
		return c.Next()
	}
}

// AdminRequired rejects non-admin users with 403. It must run after
// AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentRole(c) != models.RoleAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
