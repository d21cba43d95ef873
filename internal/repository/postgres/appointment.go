// Package postgres implements the domain repositories on gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"date":       a.Date,
			"start_time": a.StartTime,
			"end_time":   a.EndTime,
			"reason":     a.Reason,
		})
	if res.Error != nil {
		return fmt.Errorf("updating appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Update("status", a.Status)
	if res.Error != nil {
		return fmt.Errorf("updating appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *AppointmentRepository) ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status appointment.Status) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, status))
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("doctor_id = ?", doctorID))
}

func (r *AppointmentRepository) ListByDoctorAndStatus(ctx context.Context, doctorID uuid.UUID, status appointment.Status) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("doctor_id = ? AND status = ?", doctorID, status))
}

func (r *AppointmentRepository) ListActiveByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND status <> ?", doctorID, date, appointment.StatusCancelled))
}

func (r *AppointmentRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, date, start, end string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Where("status NOT IN ?", []appointment.Status{appointment.StatusCancelled, appointment.StatusCompleted}).
		Where("start_time < ? AND ? < end_time", end, start)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking slot conflict: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) ListUpcoming(ctx context.Context, fromDate, toDate string) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", fromDate, toDate).
		Where("status IN ?", []appointment.Status{
			appointment.StatusScheduled, appointment.StatusConfirmed, appointment.StatusRescheduled,
		}))
}

func (r *AppointmentRepository) list(_ context.Context, q *gorm.DB) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	if err := q.Order("date, start_time").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}
