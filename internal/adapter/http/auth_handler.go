package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/configs"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct {
	cfg configs.Config
}

func NewAuthHandler(cfg configs.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type loginReq struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the admin password for a short-lived session token the
// admin UI sends as a bearer header.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}

	if h.cfg.Security.AdminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Security.AdminPassword)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "acesso negado"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  h.cfg.Security.Issuer,
		"aud":  h.cfg.Security.Audience,
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(h.cfg.Security.TTL).Unix(),
		"role": "admin",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Security.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int64(h.cfg.Security.TTL.Seconds()),
	})
}
