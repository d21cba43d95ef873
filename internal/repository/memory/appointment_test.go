package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
)

func seedAppointment(t *testing.T, repo *AppointmentRepository, a *appointment.Appointment) *appointment.Appointment {
	t.Helper()
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return a
}

func TestAppointmentCreateAndGet(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()

	a := seedAppointment(t, repo, &appointment.Appointment{
		DoctorID:  uuid.New(),
		UserID:    uuid.New(),
		Date:      "2030-05-06",
		StartTime: "09:00",
		EndTime:   "09:30",
		Status:    appointment.StatusScheduled,
	})

	if a.ID == uuid.Nil {
		t.Fatal("Create did not assign an ID")
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StartTime != "09:00" || got.Status != appointment.StatusScheduled {
		t.Errorf("got %+v", got)
	}

	// returned value is a copy, mutating it must not leak into the store
	got.Status = appointment.StatusCancelled
	again, _ := repo.GetByID(ctx, a.ID)
	if again.Status != appointment.StatusScheduled {
		t.Error("mutation of returned appointment leaked into repository")
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("unknown id error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestAppointmentUpdateMissing(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()

	err := repo.Update(ctx, &appointment.Appointment{ID: uuid.New()})
	if !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("Update error = %v, want ErrAppointmentNotFound", err)
	}
	err = repo.UpdateStatus(ctx, &appointment.Appointment{ID: uuid.New()})
	if !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("UpdateStatus error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestUpdateNeverWritesStatus(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()

	a := seedAppointment(t, repo, &appointment.Appointment{
		DoctorID:  uuid.New(),
		UserID:    uuid.New(),
		Date:      "2030-05-06",
		StartTime: "09:00",
		EndTime:   "09:30",
		Status:    appointment.StatusScheduled,
	})

	cancelled := *a
	cancelled.Status = appointment.StatusCancelled
	if err := repo.UpdateStatus(ctx, &cancelled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// a full-record write from a snapshot taken before the cancel must not
	// bring the old status back
	a.Reason = "rewritten"
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != appointment.StatusCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}
	if got.Reason != "rewritten" {
		t.Errorf("reason = %q, want rewritten", got.Reason)
	}
}

func TestHasConflict(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()
	doctorID := uuid.New()

	booked := seedAppointment(t, repo, &appointment.Appointment{
		DoctorID:  doctorID,
		UserID:    uuid.New(),
		Date:      "2030-05-06",
		StartTime: "09:00",
		EndTime:   "09:30",
		Status:    appointment.StatusScheduled,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID:  doctorID,
		UserID:    uuid.New(),
		Date:      "2030-05-06",
		StartTime: "10:00",
		EndTime:   "10:30",
		Status:    appointment.StatusCancelled,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID:  doctorID,
		UserID:    uuid.New(),
		Date:      "2030-05-06",
		StartTime: "11:00",
		EndTime:   "11:30",
		Status:    appointment.StatusCompleted,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID:  doctorID,
		UserID:    uuid.New(),
		Date:      "2030-05-06",
		StartTime: "12:00",
		EndTime:   "12:30",
		Status:    appointment.StatusNoShow,
	})

	tests := []struct {
		name       string
		doctorID   uuid.UUID
		date       string
		start, end string
		exclude    *uuid.UUID
		want       bool
	}{
		{"overlaps scheduled", doctorID, "2030-05-06", "09:15", "09:45", nil, true},
		{"touching endpoint is free", doctorID, "2030-05-06", "09:30", "10:00", nil, false},
		{"cancelled frees its slot", doctorID, "2030-05-06", "10:00", "10:30", nil, false},
		{"completed frees its slot", doctorID, "2030-05-06", "11:00", "11:30", nil, false},
		{"no_show still blocks", doctorID, "2030-05-06", "12:00", "12:30", nil, true},
		{"other doctor unaffected", uuid.New(), "2030-05-06", "09:00", "09:30", nil, false},
		{"other date unaffected", doctorID, "2030-05-07", "09:00", "09:30", nil, false},
		{"excluded id ignored", doctorID, "2030-05-06", "09:00", "09:30", &booked.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.HasConflict(ctx, tt.doctorID, tt.date, tt.start, tt.end, tt.exclude)
			if err != nil {
				t.Fatalf("HasConflict: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasConflict = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListActiveByDoctorAndDate(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()
	doctorID := uuid.New()

	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: doctorID, UserID: uuid.New(),
		Date: "2030-05-06", StartTime: "10:00", EndTime: "10:30",
		Status: appointment.StatusConfirmed,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: doctorID, UserID: uuid.New(),
		Date: "2030-05-06", StartTime: "09:00", EndTime: "09:30",
		Status: appointment.StatusScheduled,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: doctorID, UserID: uuid.New(),
		Date: "2030-05-06", StartTime: "11:00", EndTime: "11:30",
		Status: appointment.StatusCancelled,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: doctorID, UserID: uuid.New(),
		Date: "2030-05-07", StartTime: "09:00", EndTime: "09:30",
		Status: appointment.StatusScheduled,
	})

	got, err := repo.ListActiveByDoctorAndDate(ctx, doctorID, "2030-05-06")
	if err != nil {
		t.Fatalf("ListActiveByDoctorAndDate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d appointments, want 2", len(got))
	}
	// sorted by start time
	if got[0].StartTime != "09:00" || got[1].StartTime != "10:00" {
		t.Errorf("unexpected order: %s, %s", got[0].StartTime, got[1].StartTime)
	}
}

func TestListUpcoming(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()

	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: uuid.New(), UserID: uuid.New(),
		Date: "2030-05-06", StartTime: "09:00", EndTime: "09:30",
		Status: appointment.StatusScheduled,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: uuid.New(), UserID: uuid.New(),
		Date: "2030-05-06", StartTime: "10:00", EndTime: "10:30",
		Status: appointment.StatusCancelled,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: uuid.New(), UserID: uuid.New(),
		Date: "2030-05-09", StartTime: "09:00", EndTime: "09:30",
		Status: appointment.StatusConfirmed,
	})

	got, err := repo.ListUpcoming(ctx, "2030-05-06", "2030-05-07")
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d appointments, want 1", len(got))
	}
	if got[0].Date != "2030-05-06" || got[0].Status != appointment.StatusScheduled {
		t.Errorf("unexpected appointment %+v", got[0])
	}
}

func TestListByUserAndStatus(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()
	userID := uuid.New()

	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: uuid.New(), UserID: userID,
		Date: "2030-05-06", StartTime: "09:00", EndTime: "09:30",
		Status: appointment.StatusScheduled,
	})
	seedAppointment(t, repo, &appointment.Appointment{
		DoctorID: uuid.New(), UserID: userID,
		Date: "2030-05-06", StartTime: "10:00", EndTime: "10:30",
		Status: appointment.StatusCancelled,
	})

	got, err := repo.ListByUserAndStatus(ctx, userID, appointment.StatusCancelled)
	if err != nil {
		t.Fatalf("ListByUserAndStatus: %v", err)
	}
	if len(got) != 1 || got[0].Status != appointment.StatusCancelled {
		t.Errorf("got %+v, want single cancelled appointment", got)
	}
}
