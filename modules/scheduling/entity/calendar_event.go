package entity

import (
	"strings"
	"time"
)

// AttendanceDecision is an invitee's response to an event.
type AttendanceDecision string

const (
	AttendancePending   AttendanceDecision = "PENDING"
	AttendanceTentative AttendanceDecision = "TENTATIVE"
	AttendanceAccepted  AttendanceDecision = "ACCEPTED"
	AttendanceDeclined  AttendanceDecision = "DECLINED"
)

// Blocks reports whether the decision makes the invitee unavailable.
func (d AttendanceDecision) Blocks() bool {
	return d == AttendanceAccepted || d == AttendanceTentative
}

type Person struct {
	Name         string `json:"name"`
	EmailAddress string `json:"email_address"`
}

// Is compares email addresses case-insensitively.
func (p Person) Is(email string) bool {
	return email != "" && strings.EqualFold(strings.TrimSpace(p.EmailAddress), strings.TrimSpace(email))
}

type Invitee struct {
	Person
	AttendanceDecision AttendanceDecision `json:"attendance_decision"`
}

// CalendarEvent is a read-only event from the user's calendar. Times are absolute.
type CalendarEvent struct {
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Organiser   Person    `json:"organiser"`
	Invitees    []Invitee `json:"invitees"`
	IsAllDay    bool      `json:"is_all_day"`
	IsRecurring bool      `json:"is_recurring"`
	Title       string    `json:"title"`
}

func (e CalendarEvent) Interval() TimeInterval {
	return NewTimeInterval(e.StartsAt, e.EndsAt)
}
