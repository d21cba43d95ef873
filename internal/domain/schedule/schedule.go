package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
)

const DefaultSlotDurationMins = 30

type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var weekdays = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

func (d DayOfWeek) IsValid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

var dayOrder = map[DayOfWeek]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3,
	Friday: 4, Saturday: 5, Sunday: 6,
}

// SortDays orders weekdays Monday through Sunday in place. Every repository
// returns day lists in this order.
func SortDays(days []DayOfWeek) {
	sort.Slice(days, func(i, j int) bool { return dayOrder[days[i]] < dayOrder[days[j]] })
}

func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	d := DayOfWeek(strings.ToLower(strings.TrimSpace(raw)))
	if !d.IsValid() {
		return "", ErrInvalidDayOfWeek
	}
	return d, nil
}

// DayOfDate derives the weekday from a YYYY-MM-DD calendar date.
func DayOfDate(date string) (DayOfWeek, error) {
	t, err := time.Parse(appointment.DateLayout, date)
	if err != nil {
		return "", appointment.ErrInvalidDate
	}
	return weekdays[t.Weekday()], nil
}

// Window is a recurring weekly interval during which a doctor may be booked.
// Windows for the same doctor and day may overlap each other; the engine only
// cares about the union of covered time.
type Window struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	DoctorID uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`

	DayOfWeek        DayOfWeek `gorm:"column:day_of_week;type:varchar(10);not null;index" json:"dayOfWeek"`
	StartTime        string    `gorm:"column:start_time;type:varchar(5);not null" json:"startTime"`
	EndTime          string    `gorm:"column:end_time;type:varchar(5);not null" json:"endTime"`
	SlotDurationMins int       `gorm:"column:slot_duration_mins;not null;default:30" json:"slotDurationMins"`
}

func (Window) TableName() string {
	return "booking.schedule_windows"
}

// Contains reports whether [start,end) lies inside the window.
func (w *Window) Contains(start, end string) bool {
	return w.StartTime <= start && end <= w.EndTime
}

// Slot is a discrete bookable sub-interval of a window.
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Slots slices the window into consecutive fixed-duration slots. A trailing
// remainder shorter than the slot duration is dropped.
func (w *Window) Slots() []Slot {
	start, err := minutesOfDay(w.StartTime)
	if err != nil {
		return nil
	}
	end, err := minutesOfDay(w.EndTime)
	if err != nil {
		return nil
	}
	if w.SlotDurationMins <= 0 || start >= end {
		return nil
	}

	var slots []Slot
	for cur := start; cur+w.SlotDurationMins <= end; cur += w.SlotDurationMins {
		slots = append(slots, Slot{
			StartTime: formatMinutes(cur),
			EndTime:   formatMinutes(cur + w.SlotDurationMins),
		})
	}
	return slots
}

func minutesOfDay(hhmm string) (int, error) {
	t, err := time.Parse(appointment.TimeLayout, hhmm)
	if err != nil {
		return 0, appointment.ErrInvalidTime
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return time.Date(0, 1, 1, m/60, m%60, 0, 0, time.UTC).Format(appointment.TimeLayout)
}

type AddWindowCommand struct {
	DoctorID         uuid.UUID
	DayOfWeek        DayOfWeek
	StartTime        string
	EndTime          string
	SlotDurationMins int
}
