package alert

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/license-monitor/internal/handler"
	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/service/alert"
)

type Handler struct {
	service    alert.Service
	cronSecret string
}

func NewHandler(service alert.Service, cronSecret string) *Handler {
	return &Handler{service: service, cronSecret: cronSecret}
}

// RegisterRoutes mounts the settings and log endpoints behind the session
// middleware applied to the group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("/logs", h.ListLogs)
		alerts.GET("/settings", h.GetSettings)
		alerts.PUT("/settings", h.UpdateSettings)
	}
}

// RegisterCheckRoute mounts the sweep trigger outside the session middleware
// so schedulers can call it with the cron secret.
func (h *Handler) RegisterCheckRoute(r *gin.RouterGroup) {
	r.POST("/alerts/check", h.CheckExpirations)
}

// CheckExpirations runs one expiry sweep. Callers authenticate either with
// the internal-call header set by the in-process scheduler or with the cron
// bearer secret.
func (h *Handler) CheckExpirations(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	result, err := h.service.RunExpirySweep(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) authorized(c *gin.Context) bool {
	if c.GetHeader("X-Internal-Call") == "true" {
		return true
	}
	if h.cronSecret == "" {
		return false
	}
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}

func (h *Handler) ListLogs(c *gin.Context) {
	logs, err := h.service.ListLogs(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(settings))
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req model.UpdateAlertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(settings))
}
