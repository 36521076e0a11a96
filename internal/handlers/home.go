package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/access"
	"medica-server/internal/middleware"
	"medica-server/internal/models"
	"medica-server/internal/service"
	"medica-server/internal/utils"
)

const (
	homeSpecialities = 6
	homeTopDoctors   = 4
)

// HomeHandler serves the landing page and the role dashboards.
type HomeHandler struct {
	Services *service.Services
	Log      *zap.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(services *service.Services, log *zap.Logger) *HomeHandler {
	return &HomeHandler{Services: services, Log: log}
}

// Home returns a handful of specialities and the best rated available doctors.
func (h *HomeHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	specs, err := h.Services.Doctors.Specialities(ctx, homeSpecialities)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	top, err := h.Services.Doctors.TopDoctors(ctx, homeTopDoctors)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Welcome to Medica", gin.H{
		"specialities": specs,
		"topDoctors":   newDoctorViews(top),
	})
}

func dashboardFor(role models.Role) (string, error) {
	return access.Dashboard(role)
}

// Dashboard answers with the caller's role-specific overview.
func (h *HomeHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	p := middleware.Principal(c)
	kind, err := dashboardFor(p.Role)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	var data gin.H
	switch kind {
	case "admin":
		st, err := h.Services.Admin.Stats(ctx)
		if err != nil {
			utils.RespondError(c, h.Log, err)
			return
		}
		data = gin.H{"stats": st}
	case "doctor":
		doctor, err := h.Services.Doctors.ProfileForUser(ctx, p.UserID)
		if err != nil {
			utils.RespondError(c, h.Log, err)
			return
		}
		upcoming, err := h.Services.Booking.ListUpcomingForDoctor(ctx, p.UserID)
		if err != nil {
			utils.RespondError(c, h.Log, err)
			return
		}
		data = gin.H{"doctor": newDoctorView(doctor), "upcomingAppointments": upcoming}
	case "client":
		appts, err := h.Services.Booking.ListClientAppointments(ctx, p.UserID)
		if err != nil {
			utils.RespondError(c, h.Log, err)
			return
		}
		data = gin.H{"appointments": appts}
	}
	data["dashboard"] = kind
	utils.Success(c, "Dashboard fetched successfully", data)
}
