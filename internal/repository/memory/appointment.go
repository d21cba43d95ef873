// Package memory holds map-backed repository implementations. They satisfy
// the same contracts as the postgres implementations and back the service
// tests and the local development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
)

type AppointmentRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*appointment.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{byID: make(map[uuid.UUID]*appointment.Appointment)}
}

func (r *AppointmentRepository) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *AppointmentRepository) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *AppointmentRepository) Update(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	clone := *a
	// status writes go through UpdateStatus only
	clone.Status = stored.Status
	clone.UpdatedAt = time.Now()
	r.byID[a.ID] = &clone
	return nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	clone := *stored
	clone.Status = a.Status
	clone.UpdatedAt = time.Now()
	r.byID[a.ID] = &clone
	return nil
}

func (r *AppointmentRepository) List(_ context.Context) ([]*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*appointment.Appointment) bool { return true }), nil
}

func (r *AppointmentRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *appointment.Appointment) bool { return a.UserID == userID }), nil
}

func (r *AppointmentRepository) ListByUserAndStatus(_ context.Context, userID uuid.UUID, status appointment.Status) ([]*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *appointment.Appointment) bool {
		return a.UserID == userID && a.Status == status
	}), nil
}

func (r *AppointmentRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *AppointmentRepository) ListByDoctorAndStatus(_ context.Context, doctorID uuid.UUID, status appointment.Status) ([]*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *appointment.Appointment) bool {
		return a.DoctorID == doctorID && a.Status == status
	}), nil
}

func (r *AppointmentRepository) ListActiveByDoctorAndDate(_ context.Context, doctorID uuid.UUID, date string) ([]*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *appointment.Appointment) bool {
		return a.DoctorID == doctorID && a.Date == date && a.Status != appointment.StatusCancelled
	}), nil
}

func (r *AppointmentRepository) HasConflict(_ context.Context, doctorID uuid.UUID, date, start, end string, excludeID *uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.DoctorID != doctorID || a.Date != date {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if !a.Status.BlocksBooking() {
			continue
		}
		if a.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AppointmentRepository) ListUpcoming(_ context.Context, fromDate, toDate string) ([]*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *appointment.Appointment) bool {
		return a.Status.Occupies() && a.Date >= fromDate && a.Date <= toDate
	}), nil
}

// collect returns cloned matches sorted by date then start time. Callers must
// hold at least a read lock.
func (r *AppointmentRepository) collect(match func(*appointment.Appointment) bool) []*appointment.Appointment {
	out := make([]*appointment.Appointment, 0)
	for _, a := range r.byID {
		if match(a) {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
