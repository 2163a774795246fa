package ics

import (
	"strings"
	"testing"
	"time"

	"meeting-slot-api/modules/scheduling/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) string {
	return strings.ReplaceAll(strings.TrimLeft(s, "\n"), "\n", "\r\n")
}

func window() entity.TimeInterval {
	return entity.NewTimeInterval(
		time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
	)
}

const calendarBody = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example//Calendar//EN
BEGIN:VEVENT
UID:planning-1
DTSTAMP:20261010T120000Z
DTSTART:20261019T160000Z
DTEND:20261019T170000Z
SUMMARY:Planning
ORGANIZER;CN=Bob:mailto:bob@example.com
ATTENDEE;CN=Ana;PARTSTAT=ACCEPTED:mailto:ana@example.com
ATTENDEE;PARTSTAT=DECLINED:MAILTO:carol@example.com
END:VEVENT
BEGIN:VEVENT
UID:offsite-1
DTSTAMP:20261010T120000Z
DTSTART;VALUE=DATE:20261021
DTEND;VALUE=DATE:20261022
SUMMARY:Offsite
END:VEVENT
END:VCALENDAR
`

func TestParseEvents(t *testing.T) {
	cal, err := ParseString(crlf(calendarBody))
	require.NoError(t, err)
	assert.Equal(t, 2, cal.Len())

	events := cal.EventsBetween(window())
	require.Len(t, events, 2)

	planning := events[0]
	assert.Equal(t, "Planning", planning.Title)
	assert.Equal(t, time.Date(2026, 10, 19, 16, 0, 0, 0, time.UTC), planning.StartsAt)
	assert.Equal(t, time.Date(2026, 10, 19, 17, 0, 0, 0, time.UTC), planning.EndsAt)
	assert.Equal(t, entity.Person{Name: "Bob", EmailAddress: "bob@example.com"}, planning.Organiser)
	require.Len(t, planning.Invitees, 2)
	assert.Equal(t, "ana@example.com", planning.Invitees[0].EmailAddress)
	assert.Equal(t, entity.AttendanceAccepted, planning.Invitees[0].AttendanceDecision)
	assert.Equal(t, "carol@example.com", planning.Invitees[1].EmailAddress)
	assert.Equal(t, entity.AttendanceDeclined, planning.Invitees[1].AttendanceDecision)
	assert.False(t, planning.IsAllDay)
	assert.False(t, planning.IsRecurring)

	offsite := events[1]
	assert.True(t, offsite.IsAllDay)
	assert.Equal(t, time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), offsite.StartsAt)
}

const weeklyBody = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example//Calendar//EN
BEGIN:VEVENT
UID:standup-1
DTSTAMP:20261001T120000Z
DTSTART:20261005T163000Z
DTEND:20261005T170000Z
RRULE:FREQ=WEEKLY;BYDAY=MO
SUMMARY:Weekly sync
ORGANIZER:mailto:ana@example.com
END:VEVENT
END:VCALENDAR
`

func TestEventsBetweenExpandsRecurringEventsInsideWindow(t *testing.T) {
	cal, err := ParseString(crlf(weeklyBody))
	require.NoError(t, err)
	assert.Equal(t, 1, cal.Len())

	// Mondays 19 and 26 October fall inside the window
	events := cal.EventsBetween(window())
	require.Len(t, events, 2)
	assert.Equal(t, time.Date(2026, 10, 19, 16, 30, 0, 0, time.UTC), events[0].StartsAt)
	assert.Equal(t, time.Date(2026, 10, 19, 17, 0, 0, 0, time.UTC), events[0].EndsAt)
	assert.Equal(t, time.Date(2026, 10, 26, 16, 30, 0, 0, time.UTC), events[1].StartsAt)
	for _, ev := range events {
		assert.True(t, ev.IsRecurring)
		assert.Equal(t, "ana@example.com", ev.Organiser.EmailAddress)
	}
}

func TestEventsBetweenFollowsTheWindowFarAhead(t *testing.T) {
	cal, err := ParseString(crlf(weeklyBody))
	require.NoError(t, err)

	// months after the first occurrence the rule still yields every Monday
	far := entity.NewTimeInterval(
		time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC),
	)
	events := cal.EventsBetween(far)
	require.Len(t, events, 2)
	assert.Equal(t, time.Date(2027, 3, 1, 16, 30, 0, 0, time.UTC), events[0].StartsAt)
	assert.Equal(t, time.Date(2027, 3, 8, 16, 30, 0, 0, time.UTC), events[1].StartsAt)
}

func TestEventsBetweenKeepsOccurrenceRunningIntoWindow(t *testing.T) {
	cal, err := ParseString(crlf(weeklyBody))
	require.NoError(t, err)

	// starts at 16:45, inside the 16:30-17:00 occurrence
	events := cal.EventsBetween(entity.NewTimeInterval(
		time.Date(2026, 10, 19, 16, 45, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC),
	))
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2026, 10, 19, 16, 30, 0, 0, time.UTC), events[0].StartsAt)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseString("BEGIN:VCALENDAR\r\nthis is not ical\r\n")
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	cal, err := ParseString("")
	require.NoError(t, err)
	assert.Zero(t, cal.Len())
	assert.Empty(t, cal.EventsBetween(window()))
}

func TestDecision(t *testing.T) {
	assert.Equal(t, entity.AttendanceTentative, decision("tentative"))
	assert.Equal(t, entity.AttendancePending, decision("NEEDS-ACTION"))
	assert.Equal(t, entity.AttendancePending, decision(""))
}
