package service

import (
	"fmt"
	"time"

	"meeting-slot-api/modules/scheduling/entity"
)

// SlotStep is the grid the enumerator walks within a working day.
const SlotStep = 15 * time.Minute

// FreeSlots walks the search window day by day in the user's timezone and returns
// every duration-long slot inside working hours that avoids the busy intervals.
// Slots come back sorted by start time.
func FreeSlots(
	busy []entity.TimeInterval,
	durationMinutes int,
	searchStart time.Time,
	searchEnd time.Time,
	prefs entity.UserPreferences,
) ([]entity.TimeInterval, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	schedule, err := prefs.Schedule()
	if err != nil {
		return nil, err
	}

	merged := MergeIntervals(busy)
	duration := time.Duration(durationMinutes) * time.Minute
	loc := schedule.Location

	slots := []entity.TimeInterval{}
	if searchEnd.Before(searchStart) {
		return slots, nil
	}

	first := searchStart.In(loc)
	last := searchEnd.In(loc)
	day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)

	// Busy intervals are sorted and disjoint, and the cursor only moves forward,
	// so b never needs to go back.
	b := 0
	for ; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if !schedule.WorksOn(day.Weekday()) {
			continue
		}

		workStart := schedule.Start.On(day.Year(), day.Month(), day.Day(), loc)
		workEnd := schedule.End.On(day.Year(), day.Month(), day.Day(), loc)

		// The grid runs from the later of work start and search start.
		cursor := workStart
		if searchStart.After(cursor) {
			cursor = searchStart.In(loc)
		}

		for !cursor.Add(duration).After(workEnd) {
			slotEnd := cursor.Add(duration)

			for b < len(merged) && !merged[b].EndsAt.After(cursor) {
				b++
			}
			if b >= len(merged) || !merged[b].StartsAt.Before(slotEnd) {
				slots = append(slots, entity.NewTimeInterval(cursor, slotEnd))
			}

			cursor = cursor.Add(SlotStep)
		}
	}

	return slots, nil
}

