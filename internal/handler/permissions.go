package handler

import (
	"net/http"

	"betadmin/internal/dto"
	"betadmin/internal/middleware"
	"betadmin/internal/service"

	"github.com/gin-gonic/gin"
)

type PermissionsHandler struct{ svc service.PermissionService }

func NewPermissionsHandler(svc service.PermissionService) *PermissionsHandler {
	return &PermissionsHandler{svc: svc}
}

func (h *PermissionsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PermissionsHandler) Create(c *gin.Context) {
	var req dto.CreatePermissionRequest
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

func (h *PermissionsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePermissionRequest
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

func (h *PermissionsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Permiso eliminado exitosamente"))
}

func (h *PermissionsHandler) Assign(c *gin.Context) {
	var req dto.UserPermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AssignToUser(c.Request.Context(), middleware.GetPrincipal(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Permiso asignado exitosamente"))
}

func (h *PermissionsHandler) Revoke(c *gin.Context) {
	var req dto.UserPermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RevokeFromUser(c.Request.Context(), middleware.GetPrincipal(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message("Permiso revocado exitosamente"))
}

func (h *PermissionsHandler) ForUser(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	perms, err := h.svc.ListForUser(c.Request.Context(), middleware.GetPrincipal(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID.String(), "permissions": perms})
}

// ── Role defaults ────────────────────────────────────────────────────────────

type RolePermissionsHandler struct {
	svc service.RolePermissionsService
}

func NewRolePermissionsHandler(svc service.RolePermissionsService) *RolePermissionsHandler {
	return &RolePermissionsHandler{svc: svc}
}

func (h *RolePermissionsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RolePermissionsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetPrincipal(c), c.Param("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RolePermissionsHandler) Set(c *gin.Context) {
	var req dto.SetRolePermissionsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Set(c.Request.Context(), middleware.GetPrincipal(c), c.Param("role"), req.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetFromBody is PUT /role-permissions with the role named in the body.
func (h *RolePermissionsHandler) SetFromBody(c *gin.Context) {
	var req dto.RolePermissionsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Set(c.Request.Context(), middleware.GetPrincipal(c), req.Role, req.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RolePermissionsHandler) Initialize(c *gin.Context) {
	resp, err := h.svc.Initialize(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Permisos por rol inicializados", "roles": resp})
}
