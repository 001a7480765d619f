package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/configs"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// RequireAdmin gates the /api/admin surface. Three ways in: a loopback
// request in dev mode, the static admin token, or a session JWT from the
// login endpoint. There is no per-order authorization — any admin can
// mutate any order.
func (a *Authz) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.cfg.IsDev() && isLoopback(c.Request.Host) {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			forbidden(c)
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		if a.cfg.Security.AdminToken != "" &&
			subtle.ConstantTimeCompare([]byte(raw), []byte(a.cfg.Security.AdminToken)) == 1 {
			c.Next()
			return
		}

		if a.validSession(raw) {
			c.Next()
			return
		}
		forbidden(c)
	}
}

func (a *Authz) validSession(raw string) bool {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.Security.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second)) // small clock skew
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	if claims["iss"] != a.cfg.Security.Issuer || claims["aud"] != a.cfg.Security.Audience {
		return false
	}
	return claims["role"] == "admin"
}

func isLoopback(host string) bool {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		h = host
	}
	if h == "localhost" {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}

// Uniform refusal: a fixed 403 with no detail.
func forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "acesso negado"})
}
