package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Wire formats for calendar dates and wall-clock times. Times are kept as
// zero-padded "HH:MM" strings so that lexicographic comparison matches
// chronological order.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Status lifecycle. Booking always starts at scheduled; every other state is
// reached through an explicit status change. Cancellation is a status change,
// never a row deletion.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusConfirmed   Status = "confirmed"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Occupies reports whether an appointment in this status counts against the
// per-doctor non-overlap invariant.
func (s Status) Occupies() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusRescheduled:
		return true
	}
	return false
}

// BlocksBooking reports whether an appointment in this status makes its
// interval unavailable to new bookings. Matches the legacy conflict query:
// only cancelled and completed appointments free their slot.
func (s Status) BlocksBooking() bool {
	return s != StatusCancelled && s != StatusCompleted
}

// CanTransitionTo is only consulted when strict transitions are enabled.
// Forward edges: scheduled → confirmed → completed; any status may move to
// cancelled, no_show, or rescheduled.
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	case StatusConfirmed:
		return s == StatusScheduled || s == StatusRescheduled
	case StatusCompleted:
		return s == StatusConfirmed || s == StatusScheduled || s == StatusRescheduled
	case StatusScheduled:
		return s == StatusRescheduled
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	DoctorID uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`

	Date      string `gorm:"column:date;type:date;not null;index" json:"date"`
	StartTime string `gorm:"column:start_time;type:varchar(5);not null" json:"startTime"`
	EndTime   string `gorm:"column:end_time;type:varchar(5);not null" json:"endTime"`

	Reason string `gorm:"column:reason;type:text" json:"reason"`
	Status Status `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index" json:"status"`
}

func (Appointment) TableName() string {
	return "booking.appointments"
}

// Overlaps applies the half-open interval test: [s1,e1) and [s2,e2) overlap
// iff s1 < e2 and s2 < e1. Touching endpoints do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

func (a *Appointment) Overlaps(start, end string) bool {
	return Overlaps(a.StartTime, a.EndTime, start, end)
}

// ParseDate normalizes a calendar date to DateLayout.
func ParseDate(raw string) (string, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}

// ParseTimeOfDay normalizes a wall-clock time to TimeLayout.
func ParseTimeOfDay(raw string) (string, error) {
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return "", ErrInvalidTime
	}
	return t.Format(TimeLayout), nil
}

type BookCommand struct {
	DoctorID  uuid.UUID
	UserID    uuid.UUID
	Date      string
	StartTime string
	EndTime   string
	Reason    string

	// Event enrichment supplied by the caller; not persisted.
	PatientEmail string
	DoctorName   string
}

// UpdateCommand carries partial updates. Nil fields are left untouched.
type UpdateCommand struct {
	Date      *string
	StartTime *string
	EndTime   *string
	Reason    *string
}
