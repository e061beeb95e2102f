package licensetype

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/license-monitor/internal/handler"
	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/service/licensetype"
)

type Handler struct {
	service licensetype.Service
}

func NewHandler(service licensetype.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	types := r.Group("/license-types")
	{
		types.POST("", h.CreateLicenseType)
		types.GET("", h.ListLicenseTypes)
		types.GET("/:id", h.GetLicenseType)
		types.PUT("/:id", h.UpdateLicenseType)
		types.DELETE("/:id", h.DeleteLicenseType)
	}
}

func (h *Handler) CreateLicenseType(c *gin.Context) {
	var req model.CreateLicenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	licenseType, created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, handler.NewSuccessResponse(licenseType))
}

func (h *Handler) ListLicenseTypes(c *gin.Context) {
	types, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(types))
}

func (h *Handler) GetLicenseType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid license type ID"))
		return
	}

	licenseType, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(licenseType))
}

func (h *Handler) UpdateLicenseType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid license type ID"))
		return
	}

	var req model.CreateLicenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteLicenseType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid license type ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": true}))
}
