package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/middleware"
	"github.com/legalai/core/internal/pkg/response"
)

type LoginDTO struct {
	Password string `json:"password" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/admin")
	a.POST("/token", h.login)
	a.GET("/session", authMW, h.session)
}

// POST /admin/token  {password}
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "password is required")
		return
	}
	token, expires, err := h.svc.Login(dto.Password)
	switch {
	case errors.Is(err, errAdminDisabled):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin access not configured"})
		return
	case errors.Is(err, errWrongPassword):
		response.Unauthorized(c)
		return
	case err != nil:
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "expiresAt": expires.UTC()})
}

// GET /admin/session  [auth]
func (h *Handler) session(c *gin.Context) {
	response.OK(c, gin.H{"subject": middleware.CurrentSubject(c)})
}
