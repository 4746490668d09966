package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, secret string, customerID int64) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestService_Parse_ValidToken(t *testing.T) {
	svc := NewService("test-secret")

	identity, err := svc.Parse(signToken(t, "test-secret", 42))

	assert.NoError(t, err)
	assert.Equal(t, int64(42), identity.CustomerID)
}

func TestService_Parse_WrongSecret(t *testing.T) {
	svc := NewService("test-secret")

	_, err := svc.Parse(signToken(t, "another-secret", 42))

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Parse_MissingCustomerID(t *testing.T) {
	svc := NewService("test-secret")

	_, err := svc.Parse(signToken(t, "test-secret", 0))

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Parse_ExpiredToken(t *testing.T) {
	svc := NewService("test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CustomerID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = svc.Parse(signed)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func newMiddlewareRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Middleware(svc), func(c *gin.Context) {
		identity := FromContext(c)
		c.JSON(http.StatusOK, gin.H{"customer_id": identity.CustomerID})
	})
	return router
}

func TestMiddleware_PassesIdentityThrough(t *testing.T) {
	router := newMiddlewareRouter(NewService("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", 42))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	router := newMiddlewareRouter(NewService("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_RejectsMalformedHeader(t *testing.T) {
	router := newMiddlewareRouter(NewService("test-secret"))

	for _, header := range []string{"Bearer", "Token abc", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestMiddleware_RejectsGarbageToken(t *testing.T) {
	router := newMiddlewareRouter(NewService("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFromContext_NilWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, FromContext(c))
}
