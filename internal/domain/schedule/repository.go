package schedule

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Add(ctx context.Context, w *Window) error

	// Remove deletes the window. A second removal of the same id reports
	// ErrWindowNotFound.
	Remove(ctx context.Context, windowID uuid.UUID) error

	// ListByDoctor returns every window for the doctor, ordered by day of week
	// then start time.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Window, error)

	// ListByDoctorAndDay returns the doctor's windows for one weekday, ordered
	// by start time.
	ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day DayOfWeek) ([]*Window, error)

	// AvailableDays returns the weekdays with at least one window.
	AvailableDays(ctx context.Context, doctorID uuid.UUID) ([]DayOfWeek, error)
}
