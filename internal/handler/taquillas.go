package handler

import (
	"net/http"

	"betadmin/internal/dto"
	"betadmin/internal/middleware"
	"betadmin/internal/service"

	"github.com/gin-gonic/gin"
)

type TaquillasHandler struct{ svc service.TaquillaService }

func NewTaquillasHandler(svc service.TaquillaService) *TaquillasHandler {
	return &TaquillasHandler{svc: svc}
}

func (h *TaquillasHandler) Create(c *gin.Context) {
	var req dto.CreateTaquillaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaquillasHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaquillasHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaquillaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaquillasHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Taquilla eliminada exitosamente"))
}

func (h *TaquillasHandler) AssignUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, err := service.ParseID(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.svc.AssignUser(c.Request.Context(), middleware.GetPrincipal(c), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Usuario asignado a la taquilla"))
}

func (h *TaquillasHandler) UnassignUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.UnassignUser(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Usuario desasignado de la taquilla"))
}

func (h *TaquillasHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ChangeTaquillaStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ChangeStatus(c.Request.Context(), middleware.GetPrincipal(c), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Estado de la taquilla actualizado"))
}
