package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskify/backend/internal/config"
	"taskify/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

var testAuthCfg = config.AuthConfig{
	JWTSecret:      "test-secret",
	Issuer:         "taskify-backend",
	AccessTokenTTL: time.Hour,
}

func createTestToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func validClaims(userID uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iss":     "taskify-backend",
	}
}

func serveAuthz(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Authz(testAuthCfg))
	router.GET("/protected", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		role, _ := c.Get("user_role")
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID.(uuid.UUID).String(),
			"role":    role,
		})
	})

	req, _ := http.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthzMissingHeader(t *testing.T) {
	w := serveAuthz(t, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzNonBearerHeader(t *testing.T) {
	w := serveAuthz(t, "Basic dXNlcjpwYXNz")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzGarbageToken(t *testing.T) {
	w := serveAuthz(t, "Bearer not.a.token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzValidToken(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	token := createTestToken(t, validClaims(userID), testAuthCfg.JWTSecret)

	w := serveAuthz(t, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), userID.String()) {
		t.Errorf("Expected response to carry the token's user id, got %s", w.Body.String())
	}
}

func TestAuthzExpiredToken(t *testing.T) {
	claims := validClaims(uuid.Must(uuid.NewV4()))
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := createTestToken(t, claims, testAuthCfg.JWTSecret)

	w := serveAuthz(t, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMissingExpiry(t *testing.T) {
	claims := validClaims(uuid.Must(uuid.NewV4()))
	delete(claims, "exp")
	token := createTestToken(t, claims, testAuthCfg.JWTSecret)

	w := serveAuthz(t, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzWrongIssuer(t *testing.T) {
	claims := validClaims(uuid.Must(uuid.NewV4()))
	claims["iss"] = "someone-else"
	token := createTestToken(t, claims, testAuthCfg.JWTSecret)

	w := serveAuthz(t, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzWrongSecret(t *testing.T) {
	token := createTestToken(t, validClaims(uuid.Must(uuid.NewV4())), "other-secret")

	w := serveAuthz(t, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMalformedUserID(t *testing.T) {
	claims := validClaims(uuid.Must(uuid.NewV4()))
	claims["user_id"] = "not-a-uuid"
	token := createTestToken(t, claims, testAuthCfg.JWTSecret)

	w := serveAuthz(t, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
