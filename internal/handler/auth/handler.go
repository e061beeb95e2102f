package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/license-monitor/internal/handler"
	"github.com/jwalitptl/license-monitor/internal/middleware"
	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/service/auth"
)

type Handler struct {
	service       auth.Service
	sessionMaxAge int
}

func NewHandler(service auth.Service, sessionMaxAge int) *Handler {
	return &Handler{service: service, sessionMaxAge: sessionMaxAge}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/send-code", h.SendCode)
		authGroup.POST("/verify-code", h.VerifyCode)
		authGroup.POST("/logout", h.Logout)
	}
}

// RegisterSessionRoutes mounts the endpoints that require a valid session.
func (h *Handler) RegisterSessionRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
}

func (h *Handler) SendCode(c *gin.Context) {
	var req model.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.SendCode(c.Request.Context(), &req); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"sent": true}))
}

func (h *Handler) VerifyCode(c *gin.Context) {
	var req model.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	token, err := h.service.VerifyCode(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, h.sessionMaxAge, "/", "", false, true)

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"token": token,
		"role":  req.Role,
	}))
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"logged_out": true}))
}

// Me reports the role bound to the current session.
func (h *Handler) Me(c *gin.Context) {
	role := middleware.RoleFromContext(c)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"role":  role,
		"label": role.Label(),
	}))
}
