// Package ics turns iCalendar exports into calendar events for busy-time extraction.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"meeting-slot-api/modules/scheduling/entity"
)

// MaxOccurrences caps how many instances one recurring event expands to per window.
const MaxOccurrences = 500

// Calendar is a parsed iCalendar body. Recurring events stay unexpanded
// until EventsBetween is asked for a window.
type Calendar struct {
	entries []entry
}

type entry struct {
	base entity.CalendarEvent
	set  *rrule.Set // nil for single events
}

// Parse reads every VEVENT in r and checks recurrence rules up front,
// so expansion later cannot fail.
func Parse(r io.Reader) (*Calendar, error) {
	dec := ical.NewDecoder(r)

	cal := &Calendar{}
	for {
		decoded, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode calendar: %w", err)
		}

		for _, ev := range decoded.Events() {
			e, err := toEntry(ev)
			if err != nil {
				return nil, err
			}
			cal.entries = append(cal.entries, e)
		}
	}
	return cal, nil
}

// ParseString is Parse for an inline calendar body.
func ParseString(body string) (*Calendar, error) {
	return Parse(strings.NewReader(body))
}

// Len is the number of VEVENTs, counting a recurring event once.
func (c *Calendar) Len() int {
	return len(c.entries)
}

// EventsBetween returns the single events as is, plus every occurrence of the
// recurring ones that overlaps window.
func (c *Calendar) EventsBetween(window entity.TimeInterval) []entity.CalendarEvent {
	var events []entity.CalendarEvent
	for _, e := range c.entries {
		if e.set == nil {
			events = append(events, e.base)
			continue
		}
		events = append(events, e.occurrences(window)...)
	}
	return events
}

func (e entry) occurrences(window entity.TimeInterval) []entity.CalendarEvent {
	length := e.base.EndsAt.Sub(e.base.StartsAt)
	starts := e.set.Between(window.StartsAt.Add(-length), window.EndsAt, true)
	if len(starts) > MaxOccurrences {
		starts = starts[:MaxOccurrences]
	}

	out := make([]entity.CalendarEvent, 0, len(starts))
	for _, at := range starts {
		occurrence := e.base
		occurrence.StartsAt = at.UTC()
		occurrence.EndsAt = at.Add(length).UTC()
		out = append(out, occurrence)
	}
	return out
}

func toEntry(ev ical.Event) (entry, error) {
	uid := ""
	if prop := ev.Props.Get(ical.PropUID); prop != nil {
		uid = prop.Value
	}

	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return entry{}, fmt.Errorf("event %q: start: %w", uid, err)
	}
	end, err := ev.DateTimeEnd(time.UTC)
	if err != nil {
		return entry{}, fmt.Errorf("event %q: end: %w", uid, err)
	}
	if end.Before(start) {
		return entry{}, fmt.Errorf("event %q ends before it starts", uid)
	}

	base := entity.CalendarEvent{
		StartsAt: start.UTC(),
		EndsAt:   end.UTC(),
		IsAllDay: isDate(ev.Props.Get(ical.PropDateTimeStart)),
		Title:    text(ev.Props.Get(ical.PropSummary)),
	}
	if prop := ev.Props.Get(ical.PropOrganizer); prop != nil {
		base.Organiser = person(prop)
	}
	for _, prop := range ev.Props.Values(ical.PropAttendee) {
		base.Invitees = append(base.Invitees, entity.Invitee{
			Person:             person(&prop),
			AttendanceDecision: decision(prop.Params.Get(ical.ParamParticipationStatus)),
		})
	}

	if ev.Props.Get(ical.PropRecurrenceRule) == nil {
		return entry{base: base}, nil
	}
	base.IsRecurring = true

	set, err := ev.RecurrenceSet(time.UTC)
	if err != nil {
		return entry{}, fmt.Errorf("event %q: recurrence: %w", uid, err)
	}
	if set == nil {
		return entry{base: base}, nil
	}
	return entry{base: base, set: set}, nil
}

func isDate(prop *ical.Prop) bool {
	return prop != nil && prop.ValueType() == ical.ValueDate
}

func text(prop *ical.Prop) string {
	if prop == nil {
		return ""
	}
	return prop.Value
}

func person(prop *ical.Prop) entity.Person {
	address := strings.TrimSpace(prop.Value)
	if len(address) >= len("mailto:") && strings.EqualFold(address[:len("mailto:")], "mailto:") {
		address = address[len("mailto:"):]
	}
	return entity.Person{
		Name:         prop.Params.Get(ical.ParamCommonName),
		EmailAddress: address,
	}
}

func decision(partstat string) entity.AttendanceDecision {
	switch strings.ToUpper(partstat) {
	case "ACCEPTED":
		return entity.AttendanceAccepted
	case "TENTATIVE":
		return entity.AttendanceTentative
	case "DECLINED":
		return entity.AttendanceDeclined
	default:
		return entity.AttendancePending
	}
}
