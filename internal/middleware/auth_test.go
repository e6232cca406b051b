package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, role, tokenType string, ttl time.Duration) string {
	t.Helper()
	claims := JWTClaims{
		UserID:   uuid.NewString(),
		Username: "tester",
		Role:     role,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newProtectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", JWTAuth(testSecret, nil))
	if len(roles) > 0 {
		grp.Use(RequireRole(roles...))
	}
	grp.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": GetClaims(c).Role})
	})
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	r := newProtectedRouter()
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
}

func TestJWTAuth_ValidToken(t *testing.T) {
	r := newProtectedRouter()
	token := signTestToken(t, "staff", "access", time.Hour)
	assert.Equal(t, http.StatusOK, doGet(r, token).Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	r := newProtectedRouter()
	token := signTestToken(t, "staff", "access", -time.Minute)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, token).Code)
}

func TestJWTAuth_RejectsRefreshToken(t *testing.T) {
	r := newProtectedRouter()
	token := signTestToken(t, "staff", "refresh", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, token).Code, "refresh tokens must not authorize API calls")
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	r := newProtectedRouter()
	claims := JWTClaims{Role: "admin", Type: "access", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, token).Code)
}

func TestRequireRole_AllowsListedRole(t *testing.T) {
	r := newProtectedRouter("admin", "staff")
	token := signTestToken(t, "staff", "access", time.Hour)
	assert.Equal(t, http.StatusOK, doGet(r, token).Code)
}

func TestRequireRole_ForbidsOtherRole(t *testing.T) {
	r := newProtectedRouter("admin")
	token := signTestToken(t, "customer", "access", time.Hour)
	assert.Equal(t, http.StatusForbidden, doGet(r, token).Code)
}
