package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UserPreferences is resolved per invocation and never mutated by the scheduler.
type UserPreferences struct {
	WorkDays               []int  `json:"work_days"` // 0 = Sunday ... 6 = Saturday
	WorkHoursStart         string `json:"work_hours_start"`
	WorkHoursEnd           string `json:"work_hours_end"`
	Timezone               string `json:"timezone"`
	DefaultDurationMinutes int    `json:"default_duration_minutes"`
	BufferMinutes          int    `json:"buffer_minutes"`
	AllowBackToBack        bool   `json:"allow_back_to_back"`
}

// ClockTime is a local wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" in 24h form.
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 24 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// On returns the instant of this clock time on the given local date.
func (c ClockTime) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, 0, 0, loc)
}

func (c ClockTime) minutes() int {
	return c.Hour*60 + c.Minute
}

// WorkSchedule is the parsed, ready-to-use form of UserPreferences.
type WorkSchedule struct {
	Days     map[time.Weekday]bool
	Start    ClockTime
	End      ClockTime
	Location *time.Location
}

func (w WorkSchedule) WorksOn(day time.Weekday) bool {
	return w.Days[day]
}

// Schedule parses the working-hours fields.
func (p UserPreferences) Schedule() (WorkSchedule, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return WorkSchedule{}, fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	start, err := ParseClockTime(p.WorkHoursStart)
	if err != nil {
		return WorkSchedule{}, fmt.Errorf("work hours start: %w", err)
	}
	end, err := ParseClockTime(p.WorkHoursEnd)
	if err != nil {
		return WorkSchedule{}, fmt.Errorf("work hours end: %w", err)
	}
	if end.minutes() <= start.minutes() {
		return WorkSchedule{}, fmt.Errorf("work hours end %s must be after start %s", p.WorkHoursEnd, p.WorkHoursStart)
	}
	days := make(map[time.Weekday]bool, len(p.WorkDays))
	for _, d := range p.WorkDays {
		if d < 0 || d > 6 {
			return WorkSchedule{}, fmt.Errorf("invalid work day %d: want 0-6", d)
		}
		days[time.Weekday(d)] = true
	}
	return WorkSchedule{Days: days, Start: start, End: end, Location: loc}, nil
}

// Validate checks every field, including the ones Schedule does not use.
func (p UserPreferences) Validate() error {
	if _, err := p.Schedule(); err != nil {
		return err
	}
	if p.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("default duration must be positive, got %d", p.DefaultDurationMinutes)
	}
	if p.BufferMinutes < 0 {
		return fmt.Errorf("buffer must not be negative, got %d", p.BufferMinutes)
	}
	return nil
}

// EffectiveBuffer is the padding applied around busy events.
func (p UserPreferences) EffectiveBuffer() time.Duration {
	if p.AllowBackToBack {
		return 0
	}
	return time.Duration(p.BufferMinutes) * time.Minute
}
