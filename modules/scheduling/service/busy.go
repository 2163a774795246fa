package service

import (
	"time"

	"meeting-slot-api/modules/scheduling/entity"
)

// All-day events block this local window on each date they cover.
var (
	allDayBlockStart = entity.ClockTime{Hour: 9}
	allDayBlockEnd   = entity.ClockTime{Hour: 17}
)

// BusyQuery holds everything besides the events that BusyIntervals needs.
type BusyQuery struct {
	UserEmail   string
	SearchStart time.Time
	SearchEnd   time.Time

	// Buffer pads both sides of every busy interval, see UserPreferences.EffectiveBuffer.
	Buffer   time.Duration
	Location *time.Location
}

// BusyIntervals derives the user's busy time from calendar events inside the search window.
// The result is unordered and may overlap; pass it through MergeIntervals.
func BusyIntervals(events []entity.CalendarEvent, q BusyQuery) []entity.TimeInterval {
	window := entity.NewTimeInterval(q.SearchStart, q.SearchEnd)
	buffer := q.Buffer
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}

	busy := []entity.TimeInterval{}
	for _, event := range events {
		if !event.Interval().Intersects(window) {
			continue
		}

		if event.IsAllDay {
			for _, block := range allDayBlocks(event, loc) {
				busy = append(busy, pad(block, buffer))
			}
			continue
		}

		if !IsUserBusy(event, q.UserEmail) {
			continue
		}
		busy = append(busy, pad(event.Interval(), buffer))
	}

	return busy
}

// IsUserBusy applies the attendance rules: organisers are always busy,
// invitees only when they accepted or are tentative.
func IsUserBusy(event entity.CalendarEvent, userEmail string) bool {
	if event.Organiser.Is(userEmail) {
		return true
	}
	for _, invitee := range event.Invitees {
		if invitee.Is(userEmail) && invitee.AttendanceDecision.Blocks() {
			return true
		}
	}
	return false
}

// allDayBlocks emits one 09:00-17:00 local block per calendar date the event covers.
// All-day events carry their date in UTC; the end date is exclusive.
func allDayBlocks(event entity.CalendarEvent, loc *time.Location) []entity.TimeInterval {
	start := event.StartsAt.UTC()
	end := event.EndsAt.UTC()

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if !end.After(last) && last.After(day) {
		last = last.AddDate(0, 0, -1)
	}

	blocks := []entity.TimeInterval{}
	for ; !day.After(last); day = day.AddDate(0, 0, 1) {
		blocks = append(blocks, entity.NewTimeInterval(
			allDayBlockStart.On(day.Year(), day.Month(), day.Day(), loc),
			allDayBlockEnd.On(day.Year(), day.Month(), day.Day(), loc),
		))
	}
	return blocks
}

func pad(interval entity.TimeInterval, buffer time.Duration) entity.TimeInterval {
	return entity.NewTimeInterval(interval.StartsAt.Add(-buffer), interval.EndsAt.Add(buffer))
}
