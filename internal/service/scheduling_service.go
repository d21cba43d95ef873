package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/lock"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/metrics"
)

// SchedulingService is the booking engine. All writes that can consume a slot
// run inside the per-(doctor,date) critical section, so the availability check
// and the persisting write form one atomic sequence: two concurrent requests
// for overlapping intervals can never both observe "available".
type SchedulingService struct {
	repo         appointment.Repository
	availability *AvailabilityService
	locks        *lock.Keyed
	notifier     Notifier
	metrics      *metrics.Collector
	log          *zap.Logger
	cfg          config.SchedulingConfig
}

func NewSchedulingService(
	repo appointment.Repository,
	availability *AvailabilityService,
	locks *lock.Keyed,
	notifier Notifier,
	m *metrics.Collector,
	log *zap.Logger,
	cfg config.SchedulingConfig,
) *SchedulingService {
	return &SchedulingService{
		repo:         repo,
		availability: availability,
		locks:        locks,
		notifier:     notifier,
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
}

func lockKey(doctorID uuid.UUID, date string) string {
	return doctorID.String() + "|" + date
}

// Book reserves [start,end) on the given date for the doctor. The new
// appointment starts life as scheduled.
func (s *SchedulingService) Book(ctx context.Context, cmd *appointment.BookCommand) (*appointment.Appointment, error) {
	if err := s.validateBook(cmd); err != nil {
		return nil, err
	}

	key := lockKey(cmd.DoctorID, cmd.Date)
	s.acquire(key)
	defer s.locks.Unlock(key)

	available, err := s.availability.IsAvailable(ctx, cmd.DoctorID, cmd.Date, cmd.StartTime, cmd.EndTime, nil)
	if err != nil {
		return nil, err
	}
	if !available {
		s.countBooking("conflict")
		if s.metrics != nil {
			s.metrics.SlotConflictsTotal.Inc()
		}
		return nil, appointment.ErrSlotConflict
	}

	a := &appointment.Appointment{
		DoctorID:  cmd.DoctorID,
		UserID:    cmd.UserID,
		Date:      cmd.Date,
		StartTime: cmd.StartTime,
		EndTime:   cmd.EndTime,
		Reason:    cmd.Reason,
		Status:    appointment.StatusScheduled,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.countBooking("error")
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, err
	}

	s.countBooking("booked")
	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID.String()),
		zap.String("doctor_id", a.DoctorID.String()),
		zap.String("date", a.Date),
		zap.String("start", a.StartTime),
		zap.String("end", a.EndTime),
	)

	if s.notifier != nil {
		s.notifier.Publish(ctx, newEvent(EventAppointmentCreated, a, cmd.PatientEmail, cmd.DoctorName))
	}
	return a, nil
}

// Update reschedules or edits an appointment. Every update runs inside the
// critical sections of both the current and the target date, with the record
// re-read under the lock, so a concurrent cancel or reschedule can never be
// overwritten by a stale snapshot. A change to any of date, start, or end
// re-runs the availability check for the new interval, excluding the
// appointment itself.
func (s *SchedulingService) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateCommand) (*appointment.Appointment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The record can be rescheduled concurrently between the snapshot and the
	// lock; retake the snapshot until the locked keys cover it.
	var keys []string
	for {
		date, _, _, err := s.resolveInterval(existing, cmd)
		if err != nil {
			return nil, err
		}
		keys = s.locks.LockAll(lockKey(existing.DoctorID, date), lockKey(existing.DoctorID, existing.Date))

		fresh, err := s.repo.GetByID(ctx, id)
		if err != nil {
			s.locks.UnlockAll(keys)
			return nil, err
		}
		if fresh.Date == existing.Date {
			existing = fresh
			break
		}
		s.locks.UnlockAll(keys)
		existing = fresh
	}
	defer s.locks.UnlockAll(keys)

	date, start, end, err := s.resolveInterval(existing, cmd)
	if err != nil {
		return nil, err
	}

	timeChanged := date != existing.Date || start != existing.StartTime || end != existing.EndTime
	if timeChanged {
		available, err := s.availability.IsAvailable(ctx, existing.DoctorID, date, start, end, &id)
		if err != nil {
			return nil, err
		}
		if !available {
			if s.metrics != nil {
				s.metrics.SlotConflictsTotal.Inc()
			}
			return nil, appointment.ErrSlotConflict
		}
	}

	existing.Date = date
	existing.StartTime = start
	existing.EndTime = end
	if cmd.Reason != nil {
		existing.Reason = *cmd.Reason
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	if timeChanged {
		s.log.Info("appointment rescheduled",
			zap.String("appointment_id", id.String()),
			zap.String("date", date),
			zap.String("start", start),
			zap.String("end", end),
		)
	}

	// Update never writes status; report whatever the store holds now.
	return s.repo.GetByID(ctx, id)
}

// Cancel frees the appointment's capacity by moving it to cancelled. The
// record itself is kept for audit history.
func (s *SchedulingService) Cancel(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Status = appointment.StatusCancelled
	if err := s.repo.UpdateStatus(ctx, existing); err != nil {
		return nil, err
	}

	s.countStatus(appointment.StatusCancelled)
	s.log.Info("appointment cancelled", zap.String("appointment_id", id.String()))

	if s.notifier != nil {
		s.notifier.Publish(ctx, newEvent(EventAppointmentCancelled, existing, "", ""))
	}
	return existing, nil
}

// SetStatus overwrites the appointment status. By default any status may
// follow any other, matching the legacy behavior; StrictTransitions restricts
// the change to forward lifecycle edges. A transition that puts the
// appointment back on the calendar — from a non-occupying status into an
// occupying one — re-validates non-overlap under the (doctor,date) lock, so a
// resurrected booking cannot silently double-book the slot.
func (s *SchedulingService) SetStatus(ctx context.Context, id uuid.UUID, status appointment.Status) (*appointment.Appointment, error) {
	if !status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cfg.StrictTransitions && !existing.Status.CanTransitionTo(status) {
		return nil, appointment.ErrInvalidStatusTransition
	}

	if status.Occupies() && !existing.Status.Occupies() {
		key := lockKey(existing.DoctorID, existing.Date)
		s.acquire(key)
		defer s.locks.Unlock(key)

		available, err := s.availability.IsAvailable(ctx, existing.DoctorID, existing.Date, existing.StartTime, existing.EndTime, &id)
		if err != nil {
			return nil, err
		}
		if !available {
			if s.metrics != nil {
				s.metrics.SlotConflictsTotal.Inc()
			}
			return nil, appointment.ErrSlotConflict
		}

		existing.Status = status
		if err := s.repo.UpdateStatus(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		existing.Status = status
		if err := s.repo.UpdateStatus(ctx, existing); err != nil {
			return nil, err
		}
	}

	s.countStatus(status)
	return existing, nil
}

// CheckAvailability is the standalone, side-effect-free availability query.
func (s *SchedulingService) CheckAvailability(ctx context.Context, doctorID uuid.UUID, date, start, end string) (bool, error) {
	date, start, end, err := normalizeInterval(date, start, end)
	if err != nil {
		return false, err
	}
	if s.metrics != nil {
		s.metrics.AvailabilityChecks.Inc()
	}
	return s.availability.IsAvailable(ctx, doctorID, date, start, end, nil)
}

func (s *SchedulingService) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SchedulingService) ListAll(ctx context.Context) ([]*appointment.Appointment, error) {
	return s.repo.List(ctx)
}

func (s *SchedulingService) ListByUser(ctx context.Context, userID uuid.UUID, status *appointment.Status) ([]*appointment.Appointment, error) {
	if status != nil {
		if !status.IsValid() {
			return nil, appointment.ErrInvalidStatus
		}
		return s.repo.ListByUserAndStatus(ctx, userID, *status)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *SchedulingService) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status *appointment.Status) ([]*appointment.Appointment, error) {
	if status != nil {
		if !status.IsValid() {
			return nil, appointment.ErrInvalidStatus
		}
		return s.repo.ListByDoctorAndStatus(ctx, doctorID, *status)
	}
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *SchedulingService) ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*appointment.Appointment, error) {
	date, err := appointment.ParseDate(date)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"date: " + err.Error()}}
	}
	return s.repo.ListActiveByDoctorAndDate(ctx, doctorID, date)
}

// RunReminders periodically emits reminder events for occupying appointments
// starting within the configured lead window. Blocks until ctx is cancelled.
func (s *SchedulingService) RunReminders(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.emitReminders(ctx)
		}
	}
}

func (s *SchedulingService) emitReminders(ctx context.Context) {
	now := time.Now()
	lead := time.Duration(s.cfg.ReminderLeadHours) * time.Hour

	from := now.Format(appointment.DateLayout)
	to := now.Add(lead).Format(appointment.DateLayout)

	upcoming, err := s.repo.ListUpcoming(ctx, from, to)
	if err != nil {
		s.log.Error("failed to fetch upcoming appointments", zap.Error(err))
		return
	}

	for _, a := range upcoming {
		startsAt, err := time.ParseInLocation(
			appointment.DateLayout+" "+appointment.TimeLayout,
			a.Date+" "+a.StartTime,
			time.Local,
		)
		if err != nil {
			continue
		}
		if startsAt.After(now) && startsAt.Before(now.Add(lead)) && s.notifier != nil {
			s.notifier.Publish(ctx, newEvent(EventAppointmentReminder, a, "", ""))
		}
	}
}

// acquire takes the per-key lock and records the wait time.
func (s *SchedulingService) acquire(key string) {
	start := time.Now()
	s.locks.Lock(key)
	if s.metrics != nil {
		s.metrics.LockWaitDuration.Observe(time.Since(start).Seconds())
	}
}

func (s *SchedulingService) countBooking(outcome string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *SchedulingService) countStatus(status appointment.Status) {
	if s.metrics != nil {
		s.metrics.StatusChangesTotal.WithLabelValues(string(status)).Inc()
	}
}

func (s *SchedulingService) validateBook(cmd *appointment.BookCommand) error {
	var fields []string

	if cmd.DoctorID == uuid.Nil {
		fields = append(fields, "doctorId: required")
	}
	if cmd.UserID == uuid.Nil {
		fields = append(fields, "userId: required")
	}

	date, start, end, err := normalizeInterval(cmd.Date, cmd.StartTime, cmd.EndTime)
	if err != nil {
		var validErr *ValidationError
		if errors.As(err, &validErr) {
			fields = append(fields, validErr.Fields...)
		} else {
			return err
		}
	} else {
		cmd.Date, cmd.StartTime, cmd.EndTime = date, start, end
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// resolveInterval merges an update command with the stored record and
// normalizes the result.
func (s *SchedulingService) resolveInterval(existing *appointment.Appointment, cmd *appointment.UpdateCommand) (string, string, string, error) {
	date, start, end := existing.Date, existing.StartTime, existing.EndTime
	if cmd.Date != nil {
		date = *cmd.Date
	}
	if cmd.StartTime != nil {
		start = *cmd.StartTime
	}
	if cmd.EndTime != nil {
		end = *cmd.EndTime
	}
	return normalizeInterval(date, start, end)
}

func normalizeInterval(date, start, end string) (string, string, string, error) {
	var fields []string

	date, dateErr := appointment.ParseDate(date)
	if dateErr != nil {
		fields = append(fields, "date: "+dateErr.Error())
	}
	start, startErr := appointment.ParseTimeOfDay(start)
	if startErr != nil {
		fields = append(fields, "startTime: "+startErr.Error())
	}
	end, endErr := appointment.ParseTimeOfDay(end)
	if endErr != nil {
		fields = append(fields, "endTime: "+endErr.Error())
	}
	if startErr == nil && endErr == nil && start >= end {
		fields = append(fields, "startTime: "+appointment.ErrInvalidTimeRange.Error())
	}

	if len(fields) > 0 {
		return "", "", "", &ValidationError{Fields: fields}
	}
	return date, start, end, nil
}
