package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: testSecret}

	r := gin.New()
	secured := r.Group("/api")
	secured.Use(AuthMiddleware(cfg))
	secured.GET("/whoami", func(c *gin.Context) {
		a := Actor(c)
		body := gin.H{"user_id": a.UserID, "role": a.Role}
		if a.ClientID != nil {
			body["client_id"] = *a.ClientID
		}
		c.JSON(http.StatusOK, body)
	})
	secured.GET("/reports", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec := do(newRouter(), "/api/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_authorization_header")
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "another-secret", jwt.MapClaims{
		"sub":  1,
		"role": models.RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec := do(newRouter(), "/api/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  1,
		"role": models.RoleAdmin,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	rec := do(newRouter(), "/api/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareSetsClientActor(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":      9,
		"role":     models.RoleClient,
		"clientId": 42,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	rec := do(newRouter(), "/api/whoami", token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":9,"role":"client","client_id":42}`, rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	r := newRouter()

	staff := signToken(t, testSecret, jwt.MapClaims{
		"sub": 2, "role": models.RoleStaff, "exp": time.Now().Add(time.Hour).Unix(),
	})
	admin := signToken(t, testSecret, jwt.MapClaims{
		"sub": 1, "role": models.RoleAdmin, "exp": time.Now().Add(time.Hour).Unix(),
	})

	assert.Equal(t, http.StatusForbidden, do(r, "/api/reports", staff).Code)
	assert.Equal(t, http.StatusOK, do(r, "/api/reports", admin).Code)
}
