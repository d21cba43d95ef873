package schedule

import "errors"

var (
	ErrWindowNotFound      = errors.New("schedule window not found")
	ErrInvalidDayOfWeek    = errors.New("invalid day of week")
	ErrInvalidWindowRange  = errors.New("window start time must be before end time")
	ErrInvalidSlotDuration = errors.New("slot duration must be a positive number of minutes")
)
