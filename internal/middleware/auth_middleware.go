package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gramsetu/loan-advisor/internal/config"
	"github.com/gramsetu/loan-advisor/internal/util"
)

// UserIDKey is the fiber locals key carrying the authenticated user id.
const UserIDKey = "userID"

// TokenClaims are the bearer token claims issued by the identity service.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Auth verifies the Authorization bearer token and stores the user id in the
// request locals. Requests without a valid token never reach a handler.
func Auth() fiber.Handler {
	cfg := config.LoadAuthConfig()
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return util.NewAuthError("missing authorization header")
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return util.NewAuthError("malformed authorization header")
		}

		claims := &TokenClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid {
			return util.NewAuthError("invalid authorization")
		}
		if cfg.Issuer != "" {
			if issuer, _ := claims.GetIssuer(); issuer != cfg.Issuer {
				return util.NewAuthError("invalid authorization")
			}
		}

		userID := claims.UserID
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" {
			return util.NewAuthError("invalid authorization")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
