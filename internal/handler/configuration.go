package handler

import (
	"net/http"

	"betadmin/internal/dto"
	"betadmin/internal/middleware"
	"betadmin/internal/service"

	"github.com/gin-gonic/gin"
)

type ConfigurationHandler struct{ svc service.ConfigurationService }

func NewConfigurationHandler(svc service.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{svc: svc}
}

func (h *ConfigurationHandler) Get(c *gin.Context) {
	centerID, ok := pathID(c, "center_id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetPrincipal(c), centerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConfigurationHandler) Create(c *gin.Context) {
	centerID, ok := pathID(c, "center_id")
	if !ok {
		return
	}
	var req dto.ConfigurationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetPrincipal(c), centerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ConfigurationHandler) Update(c *gin.Context) {
	centerID, ok := pathID(c, "center_id")
	if !ok {
		return
	}
	var req dto.ConfigurationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetPrincipal(c), centerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConfigurationHandler) Delete(c *gin.Context) {
	centerID, ok := pathID(c, "center_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetPrincipal(c), centerID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Configuracion eliminada exitosamente"))
}
