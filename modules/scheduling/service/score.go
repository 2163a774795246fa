package service

import (
	"strings"
	"time"

	"meeting-slot-api/modules/scheduling/entity"
)

const (
	baseScore          = 100
	proposedTimeWindow = 2 * time.Hour
	immediateWindow    = 24 * time.Hour
)

// Scorer rates a free slot against the proposal. Hour and weekday are read
// in Location, which defaults to UTC.
type Scorer struct {
	Location *time.Location
	// UserLocation is the fallback for proposed datetimes without an offset.
	UserLocation *time.Location
	Now          time.Time
}

func (s Scorer) clock() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Score returns the additive desirability of a slot. Higher is better.
func (s Scorer) Score(slot entity.TimeInterval, proposal *entity.MeetingProposal) int {
	score := baseScore
	start := slot.StartsAt.In(s.clock())
	hour := start.Hour()
	weekday := start.Weekday()

	if hour >= 10 && hour < 16 {
		score += 20
	} else if hour >= 9 && hour < 17 {
		score += 10
	}

	if weekday == time.Saturday || weekday == time.Sunday {
		score -= 50
	}

	if proposal != nil {
		if proposal.Constraints.MustBeAfternoon {
			if hour >= 12 {
				score += 30
			} else {
				score -= 40
			}
		}
		if proposal.Constraints.MustBeMorning {
			if hour < 12 {
				score += 30
			} else {
				score -= 40
			}
		}

		for _, pt := range proposal.ProposedTimes {
			if pt.Type == entity.ProposedSpecificDatetime {
				if at, ok := ParseProposedDatetime(pt, proposal.Constraints.SenderTimezone, s.UserLocation); ok {
					if absDuration(slot.StartsAt.Sub(at)) <= proposedTimeWindow {
						score += 50
					}
				}
			}
			if pt.DayOfWeek != "" && matchesWeekday(pt.DayOfWeek, weekday) {
				score += 30
			}
		}

		if proposal.Urgency == entity.UrgencyImmediate && !s.Now.IsZero() &&
			absDuration(slot.StartsAt.Sub(s.Now)) <= immediateWindow {
			score += 40
		}
	}

	if hour >= 16 {
		score -= 10
	}
	if hour < 9 {
		score -= 20
	}

	return score
}

// matchesWeekday compares full English day names, any case.
func matchesWeekday(name string, day time.Weekday) bool {
	return strings.EqualFold(strings.TrimSpace(name), day.String())
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
