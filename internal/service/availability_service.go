package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/schedule"
)

// AvailabilityService answers whether a candidate (doctor, date, interval) is
// free. It is a pure query: calling it never mutates anything.
type AvailabilityService struct {
	appointments appointment.Repository
	windows      schedule.Repository
	cfg          config.SchedulingConfig
}

func NewAvailabilityService(
	appointments appointment.Repository,
	windows schedule.Repository,
	cfg config.SchedulingConfig,
) *AvailabilityService {
	return &AvailabilityService{appointments: appointments, windows: windows, cfg: cfg}
}

// IsAvailable reports whether [start,end) on date is bookable for the doctor.
// excludeID skips one appointment in the conflict scan — pass the id of an
// appointment being rescheduled so it cannot collide with itself, or nil.
//
// The legacy behavior checks conflicting appointments only. With
// EnforceWindows set, the interval must additionally fall inside a declared
// window whenever the doctor has any windows for that weekday; a doctor with
// no declared schedule remains freely bookable either way.
func (s *AvailabilityService) IsAvailable(ctx context.Context, doctorID uuid.UUID, date, start, end string, excludeID *uuid.UUID) (bool, error) {
	day, err := schedule.DayOfDate(date)
	if err != nil {
		return false, err
	}

	if s.cfg.EnforceWindows {
		windows, err := s.windows.ListByDoctorAndDay(ctx, doctorID, day)
		if err != nil {
			return false, fmt.Errorf("fetching schedule windows: %w", err)
		}
		if len(windows) > 0 && !containedInAny(windows, start, end) {
			return false, nil
		}
	}

	conflict, err := s.appointments.HasConflict(ctx, doctorID, date, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("checking conflicts: %w", err)
	}
	return !conflict, nil
}

func containedInAny(windows []*schedule.Window, start, end string) bool {
	for _, w := range windows {
		if w.Contains(start, end) {
			return true
		}
	}
	return false
}
