package handlers

import (
	"net/http"
	"strings"

	"stone_sales/internal/models"
	"stone_sales/internal/redis"
	"stone_sales/internal/services"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "session"

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// RequireSession resolves the bearer token into a session or aborts with 401.
func (h *APIHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := h.accounts.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// RequireRole must run after RequireSession.
func (h *APIHandler) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		for _, role := range roles {
			if session != nil && session.Role == role {
				c.Next()
				return
			}
		}
		h.respondError(c, errForbidden)
	}
}

func currentSession(c *gin.Context) *redis.SessionData {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := value.(*redis.SessionData)
	return session
}

func (h *APIHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *APIHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *APIHandler) Logout(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if err := h.accounts.Logout(c.Request.Context(), token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
