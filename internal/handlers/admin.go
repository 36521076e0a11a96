package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/models"
	"medica-server/internal/service"
	"medica-server/internal/utils"
)

// AdminHandler serves the administrator views.
type AdminHandler struct {
	Admin    *service.AdminService
	Accounts *service.AccountService
	Log      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *service.AdminService, accounts *service.AccountService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Admin: admin, Accounts: accounts, Log: log}
}

// Stats returns user and appointment totals with the latest bookings.
func (h *AdminHandler) Stats(c *gin.Context) {
	st, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Stats fetched successfully", st)
}

// UsersByRole lists the users holding the role in the path.
func (h *AdminHandler) UsersByRole(c *gin.Context) {
	role, err := models.ParseRole(c.Param("role"))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	users, err := h.Admin.UsersByRole(c.Request.Context(), role)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	out := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		out = append(out, users[i].Sanitize())
	}
	utils.Success(c, "Users fetched successfully", out)
}

// UpgradeUser turns the client in the path into a doctor.
func (h *AdminHandler) UpgradeUser(c *gin.Context) {
	doctor, created, err := h.Accounts.UpgradeToDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	if created {
		utils.Created(c, "User upgraded to doctor", newDoctorView(doctor))
		return
	}
	utils.Success(c, "User already has a doctor profile", newDoctorView(doctor))
}
