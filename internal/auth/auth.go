package auth

import (
	"net/http"
	"strings"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// identityKey is the gin context key the middleware stores the caller's
// identity under.
const identityKey = "identity"

// Identity is the authenticated caller as resolved from the bearer token.
type Identity struct {
	CustomerID int64
}

type Claims struct {
	CustomerID int64 `json:"customer_id"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

func (s *Service) Parse(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.CustomerID == 0 {
		return nil, domain.ErrUnauthorized
	}
	return &Identity{CustomerID: claims.CustomerID}, nil
}

// Middleware validates the Authorization bearer token and stores the
// resolved identity in the request context.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		identity, err := svc.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// SetIdentity stores the caller's identity in the request context.
func SetIdentity(c *gin.Context, identity *Identity) {
	c.Set(identityKey, identity)
}

// FromContext returns the identity stored by Middleware, or nil when the
// request was not authenticated.
func FromContext(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*Identity)
	return identity
}
