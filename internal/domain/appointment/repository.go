package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Update persists the editable fields: date, start/end time, and reason.
	// It never writes status, so a concurrent status change cannot be lost to
	// a stale snapshot.
	Update(ctx context.Context, a *Appointment) error

	// UpdateStatus persists only a status change.
	UpdateStatus(ctx context.Context, a *Appointment) error

	List(ctx context.Context) ([]*Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Appointment, error)
	ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status Status) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status Status) ([]*Appointment, error)

	// ListActiveByDoctorAndDate returns every non-cancelled appointment for the
	// doctor on the given date.
	ListActiveByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*Appointment, error)

	// HasConflict checks whether a slot-blocking appointment overlaps
	// [start,end) for the doctor on the given date. excludeID skips the
	// appointment being moved so it cannot conflict with itself.
	HasConflict(ctx context.Context, doctorID uuid.UUID, date, start, end string, excludeID *uuid.UUID) (bool, error)

	// ListUpcoming returns occupying appointments between the two instants —
	// used by the reminder loop.
	ListUpcoming(ctx context.Context, fromDate, toDate string) ([]*Appointment, error)
}
