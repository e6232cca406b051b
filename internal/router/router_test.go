package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gotsutoki/car-management-website/internal/config"
	"github.com/Gotsutoki/car-management-website/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "route-table-secret"

// newTestRouter builds the full engine without backing stores. Handlers that
// reach the nil database panic and the recovery middleware turns that into a
// 500, which is fine here: these tests only assert the authentication and
// role verdicts, i.e. whether a request makes it past the middleware at all.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: "production", JWTSecret: testSecret, LowStockThreshold: 5}
	return New(cfg, nil, nil, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
}

func accessToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  uuid.NewString(),
		"username": role + "-user",
		"role":     role,
		"type":     "access",
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_UnauthenticatedRequestIsRejected(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/v1/sales", "/v1/cars", "/v1/customers"} {
		w := doRequest(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "GET %s without token", path)
	}
}

func TestRouter_CustomerRoleCanReadSales(t *testing.T) {
	r := newTestRouter(t)
	token := accessToken(t, "customer")

	w := doRequest(r, http.MethodGet, "/v1/sales", token)
	assert.NotEqual(t, http.StatusForbidden, w.Code, "sale list read must not be role-gated")
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/v1/sales/"+uuid.NewString(), token)
	assert.NotEqual(t, http.StatusForbidden, w.Code, "sale detail read must not be role-gated")
}

func TestRouter_CustomerRoleCanReadCarsAndCustomers(t *testing.T) {
	r := newTestRouter(t)
	token := accessToken(t, "customer")

	for _, path := range []string{
		"/v1/cars",
		"/v1/cars/" + uuid.NewString(),
		"/v1/customers",
		"/v1/customers/" + uuid.NewString(),
	} {
		w := doRequest(r, http.MethodGet, path, token)
		assert.NotEqual(t, http.StatusForbidden, w.Code, "GET %s", path)
	}
}

func TestRouter_CustomerRoleCannotWrite(t *testing.T) {
	r := newTestRouter(t)
	token := accessToken(t, "customer")
	id := uuid.NewString()

	cases := []struct{ method, path string }{
		{http.MethodPost, "/v1/sales"},
		{http.MethodPut, "/v1/sales/" + id},
		{http.MethodDelete, "/v1/sales/" + id},
		{http.MethodPost, "/v1/cars"},
		{http.MethodPatch, "/v1/cars/" + id + "/stock"},
		{http.MethodPost, "/v1/customers"},
		{http.MethodDelete, "/v1/customers/" + id},
		{http.MethodPost, "/v1/users"},
	}
	for _, tc := range cases {
		w := doRequest(r, tc.method, tc.path, token)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_StaffCanWriteSalesButNotInventory(t *testing.T) {
	r := newTestRouter(t)
	token := accessToken(t, "staff")

	// Empty body fails validation (400), which proves the role gate let it in.
	w := doRequest(r, http.MethodPost, "/v1/sales", token)
	assert.NotEqual(t, http.StatusForbidden, w.Code, "staff must be allowed to create sales")

	w = doRequest(r, http.MethodPatch, "/v1/cars/"+uuid.NewString()+"/stock", token)
	assert.NotEqual(t, http.StatusForbidden, w.Code, "staff must be allowed to adjust stock")

	w = doRequest(r, http.MethodPost, "/v1/cars", token)
	assert.Equal(t, http.StatusForbidden, w.Code, "car writes are admin-only")

	w = doRequest(r, http.MethodPost, "/v1/customers", token)
	assert.Equal(t, http.StatusForbidden, w.Code, "customer writes are admin-only")
}

func TestRouter_ReportsStayStaffOrAdmin(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/reports/statistics", accessToken(t, "customer"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodGet, "/v1/reports/statistics", accessToken(t, "staff"))
	assert.NotEqual(t, http.StatusForbidden, w.Code)
}
