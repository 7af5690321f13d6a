package middleware

import (
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gramsetu/loan-advisor/internal/util"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	// config singletons read the environment once per process
	os.Setenv("AUTH_JWT_SECRET", testSecret)
	os.Setenv("AUTH_JWT_ISSUER", "gramsetu")
	os.Exit(m.Run())
}

func protectedApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: util.FiberErrorHandler})
	app.Get("/protected", Auth(), func(c *fiber.Ctx) error {
		userID, _ := c.Locals(UserIDKey).(string)
		return c.SendString(userID)
	})
	return app
}

func signToken(t *testing.T, secret, issuer, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuth_ValidTokenPasses(t *testing.T) {
	app := protectedApp()
	token := signToken(t, testSecret, "gramsetu", "user-123", time.Now().Add(time.Hour))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test err: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "user-123" {
		t.Errorf("user id = %q, want user-123", body)
	}
}

func TestAuth_Rejections(t *testing.T) {
	app := protectedApp()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer scheme", "Basic abc123"},
		{"empty bearer token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong signing key", "Bearer " + signToken(t, "other-secret", "gramsetu", "user-123", time.Now().Add(time.Hour))},
		{"wrong issuer", "Bearer " + signToken(t, testSecret, "someone-else", "user-123", time.Now().Add(time.Hour))},
		{"expired token", "Bearer " + signToken(t, testSecret, "gramsetu", "user-123", time.Now().Add(-time.Hour))},
		{"no subject", "Bearer " + signToken(t, testSecret, "gramsetu", "", time.Now().Add(time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test err: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
}
