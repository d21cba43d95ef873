package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/service"
)

type ScheduleHandler struct {
	schedules *service.ScheduleService
}

func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

type addWindowRequest struct {
	DayOfWeek        string `json:"dayOfWeek" binding:"required"`
	StartTime        string `json:"startTime" binding:"required"`
	EndTime          string `json:"endTime" binding:"required"`
	SlotDurationMins int    `json:"slotDurationMins"`
}

func (h *ScheduleHandler) AddWindow(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	var req addWindowRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.schedules.AddWindow(c.Request.Context(), &schedule.AddWindowCommand{
		DoctorID:         doctorID,
		DayOfWeek:        schedule.DayOfWeek(req.DayOfWeek),
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		SlotDurationMins: req.SlotDurationMins,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, w)
}

func (h *ScheduleHandler) RemoveWindow(c *gin.Context) {
	windowID, ok := parseUUID(c, "windowId")
	if !ok {
		return
	}

	if err := h.schedules.RemoveWindow(c.Request.Context(), windowID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"removed": windowID.String()})
}

func (h *ScheduleHandler) ListWindows(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	var day *schedule.DayOfWeek
	if raw := c.Query("day"); raw != "" {
		d, err := schedule.ParseDayOfWeek(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		day = &d
	}

	windows, err := h.schedules.Windows(c.Request.Context(), doctorID, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, windows)
}

func (h *ScheduleHandler) AvailableDays(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	days, err := h.schedules.AvailableDays(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, days)
}

func (h *ScheduleHandler) Slots(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	day, err := schedule.ParseDayOfWeek(c.Query("day"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	slots, err := h.schedules.SlotsForDay(c.Request.Context(), doctorID, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, slots)
}

func (h *ScheduleHandler) FreeSlots(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	slots, err := h.schedules.FreeSlotsForDate(c.Request.Context(), doctorID, c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, slots)
}
