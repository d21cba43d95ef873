package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/schedule"
)

// ScheduleService manages a doctor's recurring weekly availability windows.
// Windows change rarely relative to bookings, so single-record store
// atomicity is enough here — no keyed locking.
type ScheduleService struct {
	windows      schedule.Repository
	appointments appointment.Repository
	log          *zap.Logger
}

func NewScheduleService(windows schedule.Repository, appointments appointment.Repository, log *zap.Logger) *ScheduleService {
	return &ScheduleService{windows: windows, appointments: appointments, log: log}
}

func (s *ScheduleService) AddWindow(ctx context.Context, cmd *schedule.AddWindowCommand) (*schedule.Window, error) {
	var fields []string

	if cmd.DoctorID == uuid.Nil {
		fields = append(fields, "doctorId: required")
	}
	if !cmd.DayOfWeek.IsValid() {
		fields = append(fields, "dayOfWeek: "+schedule.ErrInvalidDayOfWeek.Error())
	}

	start, startErr := appointment.ParseTimeOfDay(cmd.StartTime)
	if startErr != nil {
		fields = append(fields, "startTime: "+startErr.Error())
	}
	end, endErr := appointment.ParseTimeOfDay(cmd.EndTime)
	if endErr != nil {
		fields = append(fields, "endTime: "+endErr.Error())
	}
	if startErr == nil && endErr == nil && start >= end {
		fields = append(fields, "startTime: "+schedule.ErrInvalidWindowRange.Error())
	}

	if cmd.SlotDurationMins == 0 {
		cmd.SlotDurationMins = schedule.DefaultSlotDurationMins
	}
	if cmd.SlotDurationMins < 0 {
		fields = append(fields, "slotDurationMins: "+schedule.ErrInvalidSlotDuration.Error())
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	w := &schedule.Window{
		DoctorID:         cmd.DoctorID,
		DayOfWeek:        cmd.DayOfWeek,
		StartTime:        start,
		EndTime:          end,
		SlotDurationMins: cmd.SlotDurationMins,
	}
	if err := s.windows.Add(ctx, w); err != nil {
		return nil, err
	}

	s.log.Info("schedule window added",
		zap.String("window_id", w.ID.String()),
		zap.String("doctor_id", w.DoctorID.String()),
		zap.String("day", string(w.DayOfWeek)),
		zap.String("start", w.StartTime),
		zap.String("end", w.EndTime),
	)
	return w, nil
}

func (s *ScheduleService) RemoveWindow(ctx context.Context, windowID uuid.UUID) error {
	return s.windows.Remove(ctx, windowID)
}

// Windows lists a doctor's windows, optionally restricted to one weekday.
func (s *ScheduleService) Windows(ctx context.Context, doctorID uuid.UUID, day *schedule.DayOfWeek) ([]*schedule.Window, error) {
	if day != nil {
		if !day.IsValid() {
			return nil, schedule.ErrInvalidDayOfWeek
		}
		return s.windows.ListByDoctorAndDay(ctx, doctorID, *day)
	}
	return s.windows.ListByDoctor(ctx, doctorID)
}

func (s *ScheduleService) AvailableDays(ctx context.Context, doctorID uuid.UUID) ([]schedule.DayOfWeek, error) {
	return s.windows.AvailableDays(ctx, doctorID)
}

// SlotsForDay enumerates the bookable slots of every window the doctor has on
// that weekday. Overlapping windows may produce duplicate slots; duplicates
// are collapsed.
func (s *ScheduleService) SlotsForDay(ctx context.Context, doctorID uuid.UUID, day schedule.DayOfWeek) ([]schedule.Slot, error) {
	if !day.IsValid() {
		return nil, schedule.ErrInvalidDayOfWeek
	}

	windows, err := s.windows.ListByDoctorAndDay(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}

	seen := make(map[schedule.Slot]bool)
	slots := make([]schedule.Slot, 0)
	for _, w := range windows {
		for _, slot := range w.Slots() {
			if !seen[slot] {
				seen[slot] = true
				slots = append(slots, slot)
			}
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

// FreeSlotsForDate enumerates the doctor's slots for the date's weekday and
// drops every slot that overlaps a slot-blocking appointment.
func (s *ScheduleService) FreeSlotsForDate(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error) {
	date, err := appointment.ParseDate(date)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"date: " + err.Error()}}
	}

	day, err := schedule.DayOfDate(date)
	if err != nil {
		return nil, err
	}

	slots, err := s.SlotsForDay(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}

	booked, err := s.appointments.ListActiveByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	free := make([]schedule.Slot, 0, len(slots))
	for _, slot := range slots {
		taken := false
		for _, a := range booked {
			if a.Status.BlocksBooking() && a.Overlaps(slot.StartTime, slot.EndTime) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free, nil
}
