package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/middleware"
	"medica-server/internal/service"
	"medica-server/internal/utils"
)

// DoctorHandler serves the doctor directory and the doctor's own profile and schedule.
type DoctorHandler struct {
	Doctors *service.DoctorService
	Log     *zap.Logger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(doctors *service.DoctorService, log *zap.Logger) *DoctorHandler {
	return &DoctorHandler{Doctors: doctors, Log: log}
}

// BrowseQuery filters the directory.
type BrowseQuery struct {
	Speciality string `form:"speciality" validate:"omitempty,uuid"`
	City       string `form:"city" validate:"max=100"`
	Name       string `form:"name" validate:"max=100"`
}

// Browse lists available doctors matching the query.
func (h *DoctorHandler) Browse(c *gin.Context) {
	var q BrowseQuery
	if !utils.BindQuery(c, &q) {
		return
	}

	doctors, err := h.Doctors.Browse(c.Request.Context(), service.DoctorFilter{
		SpecialityID: q.Speciality,
		City:         q.City,
		Name:         q.Name,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", newDoctorViews(doctors))
}

// Detail returns a doctor with active availability and reviews.
func (h *DoctorHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	doctor, err := h.Doctors.Get(ctx, c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	reviews, err := h.Doctors.Reviews(ctx, doctor.ID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", gin.H{
		"doctor":  newDoctorView(doctor),
		"reviews": newReviewViews(reviews),
	})
}

// Specialities lists every speciality.
func (h *DoctorHandler) Specialities(c *gin.Context) {
	specs, err := h.Doctors.Specialities(c.Request.Context(), 0)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Specialities fetched successfully", specs)
}

// DoctorProfileRequest carries editable doctor fields. Omitted fields are unchanged.
type DoctorProfileRequest struct {
	SpecialityID    *string  `json:"specialityId"`
	LicenseNumber   *string  `json:"licenseNumber" binding:"omitempty,max=50"`
	ExperienceYears *uint    `json:"experienceYears" binding:"omitempty,max=80"`
	ConsultationFee *float64 `json:"consultationFee"`
	Bio             *string  `json:"bio"`
	Education       *string  `json:"education"`
	ClinicName      *string  `json:"clinicName" binding:"omitempty,max=200"`
	ClinicAddress   *string  `json:"clinicAddress"`
	IsAvailable     *bool    `json:"isAvailable"`
}

// UpdateProfile edits the calling doctor's medical profile.
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	var req DoctorProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, err := h.Doctors.UpdateProfile(c.Request.Context(), middleware.Principal(c).UserID, service.DoctorProfileInput{
		SpecialityID:    req.SpecialityID,
		LicenseNumber:   req.LicenseNumber,
		ExperienceYears: req.ExperienceYears,
		ConsultationFee: req.ConsultationFee,
		Bio:             req.Bio,
		Education:       req.Education,
		ClinicName:      req.ClinicName,
		ClinicAddress:   req.ClinicAddress,
		IsAvailable:     req.IsAvailable,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Medical profile updated", newDoctorView(doctor))
}

// ListAvailability returns the calling doctor's weekly schedule.
func (h *DoctorHandler) ListAvailability(c *gin.Context) {
	windows, err := h.Doctors.ListAvailability(c.Request.Context(), middleware.Principal(c).UserID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	out := make([]availabilityView, 0, len(windows))
	for _, w := range windows {
		out = append(out, newAvailabilityView(w))
	}
	utils.Success(c, "Availability fetched successfully", out)
}

// AvailabilityRequest is one weekly window; days run Monday (0) to Sunday (6).
type AvailabilityRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" binding:"required,min=0,max=6"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	IsActive  *bool  `json:"isActive"`
}

// AddAvailability appends a window to the calling doctor's schedule.
func (h *DoctorHandler) AddAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	window, err := h.Doctors.AddAvailability(c.Request.Context(), middleware.Principal(c).UserID, service.AvailabilityInput{
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  active,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Availability added", newAvailabilityView(*window))
}

// DeleteAvailability removes one of the calling doctor's windows.
func (h *DoctorHandler) DeleteAvailability(c *gin.Context) {
	if err := h.Doctors.DeleteAvailability(c.Request.Context(), middleware.Principal(c).UserID, c.Param("id")); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Availability removed", nil)
}
