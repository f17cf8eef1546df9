package handler

import (
	"tobaku-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

type RoleResponse struct {
	Code       string   `json:"code"`
	Privileges []string `json:"privileges"`
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles := []RoleResponse{
		{Code: model.RoleAdmin, Privileges: model.PrivilegesForRole(model.RoleAdmin)},
		{Code: model.RoleStaff, Privileges: model.PrivilegesForRole(model.RoleStaff)},
	}
	return c.JSON(roles)
}
