package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Weekdays lists the weekday codes in display order.
var Weekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// HourSlots lists the bookable hour labels in display order.
var HourSlots = []string{"08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00", "22:00"}

const (
	firstSlotHour = 8
	lastSlotHour  = 22
)

var weekdayNames = map[string]string{
	"mon": "Monday",
	"tue": "Tuesday",
	"wed": "Wednesday",
	"thu": "Thursday",
	"fri": "Friday",
	"sat": "Saturday",
	"sun": "Sunday",
}

var (
	// ErrSlotOutOfRange is returned for weekday/hour pairs outside the fixed grid.
	ErrSlotOutOfRange = errors.New("slot outside weekly grid")
	// ErrSlotTaken is returned when booking a slot that is no longer free.
	ErrSlotTaken = errors.New("slot already booked")
)

// IsWeekday reports whether code is one of the seven weekday codes.
func IsWeekday(code string) bool {
	_, ok := weekdayNames[code]
	return ok
}

// WeekdayName returns the display name for a weekday code.
func WeekdayName(code string) string {
	if name, ok := weekdayNames[code]; ok {
		return name
	}
	return code
}

// ParseHourSlot normalises "8", "08", "8:00" or "08:00" to the canonical
// "08:00" label. Odd hours, non-zero minutes and hours outside 8..22 are
// rejected.
func ParseHourSlot(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	hourPart, minutePart, hasMinutes := strings.Cut(raw, ":")
	if hasMinutes && minutePart != "00" {
		return "", false
	}
	if hourPart == "" || len(hourPart) > 2 {
		return "", false
	}
	for _, r := range hourPart {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < firstSlotHour || hour > lastSlotHour || hour%2 != 0 {
		return "", false
	}
	return fmt.Sprintf("%02d:00", hour), true
}

// IsHourSlot reports whether label is a canonical hour label.
func IsHourSlot(label string) bool {
	canonical, ok := ParseHourSlot(label)
	return ok && canonical == label
}

// DayFreeTimes is one row of the profile schedule.
type DayFreeTimes struct {
	Day   string   `json:"day"`
	Name  string   `json:"name"`
	Hours []string `json:"hours"`
}

// WeeklyAvailability maps weekday code -> hour label -> free flag.
type WeeklyAvailability map[string]map[string]bool

// NewWeeklyAvailability builds a complete table with every slot set to free.
func NewWeeklyAvailability(free bool) WeeklyAvailability {
	table := make(WeeklyAvailability, len(Weekdays))
	for _, day := range Weekdays {
		hours := make(map[string]bool, len(HourSlots))
		for _, hour := range HourSlots {
			hours[hour] = free
		}
		table[day] = hours
	}
	return table
}

// Validate checks that every weekday and hour key is present and nothing else.
func (w WeeklyAvailability) Validate() error {
	if len(w) != len(Weekdays) {
		return fmt.Errorf("availability has %d weekdays, want %d", len(w), len(Weekdays))
	}
	for _, day := range Weekdays {
		hours, ok := w[day]
		if !ok {
			return fmt.Errorf("availability missing weekday %q", day)
		}
		if len(hours) != len(HourSlots) {
			return fmt.Errorf("availability for %s has %d hours, want %d", day, len(hours), len(HourSlots))
		}
		for _, hour := range HourSlots {
			if _, ok := hours[hour]; !ok {
				return fmt.Errorf("availability for %s missing hour %q", day, hour)
			}
		}
	}
	return nil
}

// IsFree reports whether the slot is free. Callers must check the domain
// with IsWeekday/ParseHourSlot first; unknown slots read as not free.
func (w WeeklyAvailability) IsFree(day, hour string) bool {
	hours, ok := w[day]
	if !ok {
		return false
	}
	return hours[hour]
}

// Book flips a free slot to booked. The transition is one-way.
func (w WeeklyAvailability) Book(day, hour string) error {
	if !IsWeekday(day) || !IsHourSlot(hour) {
		return ErrSlotOutOfRange
	}
	hours, ok := w[day]
	if !ok {
		return ErrSlotOutOfRange
	}
	if !hours[hour] {
		return ErrSlotTaken
	}
	hours[hour] = false
	return nil
}

// Clone returns a deep copy.
func (w WeeklyAvailability) Clone() WeeklyAvailability {
	out := make(WeeklyAvailability, len(w))
	for day, hours := range w {
		cp := make(map[string]bool, len(hours))
		for hour, free := range hours {
			cp[hour] = free
		}
		out[day] = cp
	}
	return out
}

// FreeTimesByDay lists free hour labels per weekday, both in fixed order.
func (w WeeklyAvailability) FreeTimesByDay() []DayFreeTimes {
	result := make([]DayFreeTimes, 0, len(Weekdays))
	for _, day := range Weekdays {
		row := DayFreeTimes{Day: day, Name: WeekdayName(day), Hours: []string{}}
		for _, hour := range HourSlots {
			if w.IsFree(day, hour) {
				row.Hours = append(row.Hours, hour)
			}
		}
		result = append(result, row)
	}
	return result
}

// UnmarshalJSON accepts loose hour keys ("8:00") and enforces the key-set invariant.
func (w *WeeklyAvailability) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	table := make(WeeklyAvailability, len(raw))
	for day, hours := range raw {
		if !IsWeekday(day) {
			return fmt.Errorf("availability has unknown weekday %q", day)
		}
		normalized := make(map[string]bool, len(hours))
		for hour, free := range hours {
			label, ok := ParseHourSlot(hour)
			if !ok {
				return fmt.Errorf("availability for %s has unknown hour %q", day, hour)
			}
			normalized[label] = free
		}
		table[day] = normalized
	}
	if err := table.Validate(); err != nil {
		return err
	}
	*w = table
	return nil
}

// Value stores the table as JSON text.
func (w WeeklyAvailability) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	payload, err := json.Marshal(map[string]map[string]bool(w))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan reads the JSON text column written by Value.
func (w *WeeklyAvailability) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case []byte:
		return w.UnmarshalJSON(v)
	case string:
		return w.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("scan availability: unsupported type %T", src)
	}
}
