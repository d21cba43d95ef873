package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/auth"
)

type AppointmentHandler struct {
	scheduling *service.SchedulingService
}

func NewAppointmentHandler(scheduling *service.SchedulingService) *AppointmentHandler {
	return &AppointmentHandler{scheduling: scheduling}
}

type bookAppointmentRequest struct {
	DoctorID   string `json:"doctorId" binding:"required,uuid"`
	UserID     string `json:"userId" binding:"required,uuid"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"startTime" binding:"required"`
	EndTime    string `json:"endTime" binding:"required"`
	Reason     string `json:"reason"`
	DoctorName string `json:"doctorName"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	doctorID, _ := uuid.Parse(req.DoctorID)
	userID, _ := uuid.Parse(req.UserID)

	// Patients may only book for themselves.
	if role, _ := middleware.CallerRole(c); role == auth.RolePatient {
		if callerID, ok := middleware.CallerID(c); !ok || callerID != userID {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "patients can only book appointments for themselves"})
			return
		}
	}

	a, err := h.scheduling.Book(c.Request.Context(), &appointment.BookCommand{
		DoctorID:     doctorID,
		UserID:       userID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Reason:       req.Reason,
		PatientEmail: middleware.CallerEmail(c),
		DoctorName:   req.DoctorName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	appts, err := h.scheduling.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.scheduling.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type updateAppointmentRequest struct {
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Reason    *string `json:"reason"`
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.scheduling.Update(c.Request.Context(), id, &appointment.UpdateCommand{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.scheduling.Cancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) SetStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req setStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.scheduling.SetStatus(c.Request.Context(), id, appointment.Status(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) ListByUser(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	var status *appointment.Status
	if raw := c.Query("status"); raw != "" {
		s := appointment.Status(raw)
		status = &s
	}

	appts, err := h.scheduling.ListByUser(c.Request.Context(), userID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	if date := c.Query("date"); date != "" {
		appts, err := h.scheduling.ListByDoctorAndDate(c.Request.Context(), doctorID, date)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, appts)
		return
	}

	var status *appointment.Status
	if raw := c.Query("status"); raw != "" {
		s := appointment.Status(raw)
		status = &s
	}

	appts, err := h.scheduling.ListByDoctor(c.Request.Context(), doctorID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

type availabilityResponse struct {
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	doctorIDRaw := c.Query("doctor_id")
	doctorID, err := uuid.Parse(doctorIDRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid doctor_id: must be a valid UUID"})
		return
	}

	date := c.Query("date")
	start := c.Query("start_time")
	end := c.Query("end_time")

	available, err := h.scheduling.CheckAvailability(c.Request.Context(), doctorID, date, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, availabilityResponse{
		DoctorID:  doctorID.String(),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Available: available,
	})
}
