package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/middleware"
	"medica-server/internal/models"
	"medica-server/internal/service"
	"medica-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Booking *service.BookingService
	Log     *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(booking *service.BookingService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Booking: booking, Log: log}
}

// CreateAppointmentRequest represents the request body for booking a slot.
type CreateAppointmentRequest struct {
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	AppointmentTime string `json:"appointmentTime" binding:"required"`
	Reason          string `json:"reason" binding:"max=2000"`
}

// CreateAppointment books the doctor in the path for the calling client.
// A doctor who is not accepting appointments answers 404, the same as an
// unknown doctor. A taken slot answers 409, and a time off the booking grid
// (half hours from 08:00 to 17:30 by default) answers 400.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Booking.CreateAppointment(c.Request.Context(), service.BookingInput{
		ClientID: middleware.Principal(c).UserID,
		DoctorID: c.Param("id"),
		Date:     req.AppointmentDate,
		Time:     req.AppointmentTime,
		Reason:   req.Reason,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Appointment request sent", appt)
}

// ClientAppointments lists the calling client's appointments, latest first.
func (h *AppointmentHandler) ClientAppointments(c *gin.Context) {
	appts, err := h.Booking.ListClientAppointments(c.Request.Context(), middleware.Principal(c).UserID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// DoctorAppointments lists the calling doctor's upcoming pending and confirmed appointments.
func (h *AppointmentHandler) DoctorAppointments(c *gin.Context) {
	appts, err := h.Booking.ListUpcomingForDoctor(c.Request.Context(), middleware.Principal(c).UserID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// GetAppointment returns one appointment to its client, its doctor or an admin.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	p := middleware.Principal(c)
	appt, err := h.Booking.GetAppointment(c.Request.Context(), p.UserID, p.Role, c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appt)
}

// UpdateAppointmentRequest records an outcome. Omitted fields are unchanged.
type UpdateAppointmentRequest struct {
	Status       *string `json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled no_show"`
	Notes        *string `json:"notes"`
	Diagnosis    *string `json:"diagnosis"`
	Prescription *string `json:"prescription"`
}

// UpdateAppointment lets the owning doctor set status and clinical notes.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	in := service.UpdateInput{
		Notes:        req.Notes,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
	}
	if req.Status != nil {
		st := models.AppointmentStatus(*req.Status)
		in.Status = &st
	}

	appt, err := h.Booking.UpdateAppointment(c.Request.Context(), middleware.Principal(c).UserID, c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment updated", appt)
}
