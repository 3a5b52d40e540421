package handler

import (
	"fmt"
	"net/http"

	"betadmin/internal/dto"
	"betadmin/internal/middleware"
	"betadmin/internal/service"

	"github.com/gin-gonic/gin"
)

type BettingCentersHandler struct {
	svc       service.BettingCenterService
	taquillas service.TaquillaService
}

func NewBettingCentersHandler(svc service.BettingCenterService, taquillas service.TaquillaService) *BettingCentersHandler {
	return &BettingCentersHandler{svc: svc, taquillas: taquillas}
}

func (h *BettingCentersHandler) Create(c *gin.Context) {
	var req dto.CreateBettingCenterRequest
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

func (h *BettingCentersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BettingCentersHandler) Get(c *gin.Context) {
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

func (h *BettingCentersHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBettingCenterRequest
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

func (h *BettingCentersHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Centro de apuestas eliminado exitosamente"))
}

func (h *BettingCentersHandler) AssignUser(c *gin.Context) {
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
	c.JSON(http.StatusOK, message("Usuario asignado al centro de apuestas"))
}

func (h *BettingCentersHandler) UnassignUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	if err := h.svc.UnassignUser(c.Request.Context(), middleware.GetPrincipal(c), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Usuario desasignado del centro de apuestas"))
}

func (h *BettingCentersHandler) Users(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListUsers(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BettingCentersHandler) ManagePermissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ManagePermissionsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ManagePermissions(c.Request.Context(), middleware.GetPrincipal(c), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Permisos actualizados exitosamente"))
}

func (h *BettingCentersHandler) ChangeAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ChangeAdminRequest
	if !bindAndValidate(c, &req) {
		return
	}
	newAdminID, err := service.ParseID(req.NewAdminID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.svc.ChangeAdmin(c.Request.Context(), middleware.GetPrincipal(c), id, newAdminID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Administrador del centro actualizado"))
}

// Taquillas lists the center's taquillas; ?status=active keeps only active ones.
func (h *BettingCentersHandler) Taquillas(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	activeOnly := c.Query("status") == "active"
	resp, err := h.taquillas.ListByCenter(c.Request.Context(), middleware.GetPrincipal(c), id, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BettingCentersHandler) Report(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.svc.Report(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=centro-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
