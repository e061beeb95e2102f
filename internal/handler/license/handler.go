package license

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/license-monitor/internal/handler"
	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/service/license"
	"github.com/jwalitptl/license-monitor/internal/service/worker"
)

type Handler struct {
	service   license.Service
	workerSvc worker.Service
}

func NewHandler(service license.Service, workerSvc worker.Service) *Handler {
	return &Handler{service: service, workerSvc: workerSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	licenses := r.Group("/licenses")
	{
		licenses.POST("", h.CreateLicense)
		licenses.GET("", h.ListLicenses)
		licenses.GET("/missing", h.ListMissing)
		licenses.GET("/:id", h.GetLicense)
		licenses.PUT("/:id", h.UpdateLicense)
		licenses.DELETE("/:id", h.DeleteLicense)
	}
}

func (h *Handler) CreateLicense(c *gin.Context) {
	var req model.CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"license":    result.License,
		"superseded": result.Superseded,
	}))
}

func (h *Handler) ListLicenses(c *gin.Context) {
	var filters model.LicenseFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	licenses, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(licenses))
}

// ListMissing reports required license types with no active license, fleet
// wide. Registered before /:id so gin does not treat "missing" as an ID.
func (h *Handler) ListMissing(c *gin.Context) {
	missing, err := h.workerSvc.MissingLicenses(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(missing))
}

func (h *Handler) GetLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid license ID"))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid license ID"))
		return
	}

	var req model.UpdateLicenseRequest
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

func (h *Handler) DeleteLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid license ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": true}))
}
