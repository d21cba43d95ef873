package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrSlotConflict            = errors.New("the selected time slot is not available")
	ErrInvalidDate             = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTime             = errors.New("time must be in HH:MM format")
	ErrInvalidTimeRange        = errors.New("start time must be before end time")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
)
