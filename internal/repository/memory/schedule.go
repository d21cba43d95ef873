package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/schedule"
)

type ScheduleRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*schedule.Window
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{byID: make(map[uuid.UUID]*schedule.Window)}
}

func (r *ScheduleRepository) Add(_ context.Context, w *schedule.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	clone := *w
	r.byID[w.ID] = &clone
	return nil
}

func (r *ScheduleRepository) Remove(_ context.Context, windowID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[windowID]; !ok {
		return schedule.ErrWindowNotFound
	}
	delete(r.byID, windowID)
	return nil
}

func (r *ScheduleRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*schedule.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(w *schedule.Window) bool { return w.DoctorID == doctorID }), nil
}

func (r *ScheduleRepository) ListByDoctorAndDay(_ context.Context, doctorID uuid.UUID, day schedule.DayOfWeek) ([]*schedule.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(w *schedule.Window) bool {
		return w.DoctorID == doctorID && w.DayOfWeek == day
	}), nil
}

func (r *ScheduleRepository) AvailableDays(_ context.Context, doctorID uuid.UUID) ([]schedule.DayOfWeek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[schedule.DayOfWeek]bool)
	for _, w := range r.byID {
		if w.DoctorID == doctorID {
			seen[w.DayOfWeek] = true
		}
	}

	days := make([]schedule.DayOfWeek, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	schedule.SortDays(days)
	return days, nil
}

func (r *ScheduleRepository) collect(match func(*schedule.Window) bool) []*schedule.Window {
	out := make([]*schedule.Window, 0)
	for _, w := range r.byID {
		if match(w) {
			clone := *w
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
