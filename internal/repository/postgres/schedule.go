package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/schedule"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Add(ctx context.Context, w *schedule.Window) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("creating schedule window: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) Remove(ctx context.Context, windowID uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&schedule.Window{}, "id = ?", windowID)
	if res.Error != nil {
		return fmt.Errorf("removing schedule window: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return schedule.ErrWindowNotFound
	}
	return nil
}

func (r *ScheduleRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*schedule.Window, error) {
	var out []*schedule.Window
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week, start_time").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing schedule windows: %w", err)
	}
	return out, nil
}

func (r *ScheduleRepository) ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day schedule.DayOfWeek) ([]*schedule.Window, error) {
	var out []*schedule.Window
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, day).
		Order("start_time").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing schedule windows by day: %w", err)
	}
	return out, nil
}

func (r *ScheduleRepository) AvailableDays(ctx context.Context, doctorID uuid.UUID) ([]schedule.DayOfWeek, error) {
	var days []schedule.DayOfWeek
	err := r.db.WithContext(ctx).Model(&schedule.Window{}).
		Distinct("day_of_week").
		Where("doctor_id = ?", doctorID).
		Pluck("day_of_week", &days).Error
	if err != nil {
		return nil, fmt.Errorf("listing available days: %w", err)
	}
	// the column sorts alphabetically; callers get calendar order
	schedule.SortDays(days)
	return days, nil
}
