package service

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"meeting-slot-api/modules/scheduling/entity"
)

const (
	defaultLeadTime  = 120 * time.Minute
	relativeDayStart = 9 // local hour that "tomorrow" and "next week" resolve to
)

// durationRule maps meeting-type keywords to a length in minutes.
type durationRule struct {
	keywords []string
	minutes  int
}

var durationRules = []durationRule{
	{keywords: []string{"quick", "catchup"}, minutes: 30},
	{keywords: []string{"board", "planning"}, minutes: 60},
	{keywords: []string{"1:1", "one-on-one"}, minutes: 30},
}

// InferDuration picks the meeting length in minutes.
func InferDuration(proposal *entity.MeetingProposal, defaultMinutes int) int {
	if proposal == nil {
		return defaultMinutes
	}

	switch proposal.Duration.Confidence {
	case entity.ConfidenceExplicit, entity.ConfidenceInferred:
		if minutes, ok := proposal.Duration.WholeMinutes(); ok && minutes > 0 {
			return minutes
		}
	}

	meetingType := strings.ToLower(proposal.MeetingType)
	if meetingType != "" {
		for _, rule := range durationRules {
			for _, keyword := range rule.keywords {
				if strings.Contains(meetingType, keyword) {
					return rule.minutes
				}
			}
		}
	}

	return defaultMinutes
}

// relativeRule resolves a phrase found in a proposed datetime to a search start.
type relativeRule struct {
	phrase  string
	resolve func(now time.Time, loc *time.Location) time.Time
}

// Order matters: the first phrase contained in the datetime wins.
var relativeRules = []relativeRule{
	{phrase: "next week", resolve: nextWeekStart},
	{phrase: "this week", resolve: thisWeekStart},
	{phrase: "today", resolve: func(now time.Time, _ *time.Location) time.Time { return now.Add(2 * time.Hour) }},
	{phrase: "tomorrow", resolve: tomorrowStart},
}

// nextWeekStart is the coming Monday at 09:00 local. On a Monday that is a week ahead.
func nextWeekStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	days := (8 - int(local.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return time.Date(local.Year(), local.Month(), local.Day()+days, relativeDayStart, 0, 0, 0, loc)
}

// thisWeekStart is this ISO week's Monday at 09:00 local, or two hours from now once that has passed.
func thisWeekStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	back := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day()-back, relativeDayStart, 0, 0, 0, loc)
	if now.After(monday) {
		return now.Add(2 * time.Hour)
	}
	return monday
}

func tomorrowStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, relativeDayStart, 0, 0, 0, loc)
}

// SearchDaysAhead is the window length for an urgency.
func SearchDaysAhead(urgency entity.Urgency) int {
	switch urgency {
	case entity.UrgencyImmediate:
		return 3
	case entity.UrgencySoon:
		return 7
	default:
		return 14
	}
}

// InferSearchRange turns the proposal's timing hints into the window to enumerate.
func InferSearchRange(proposal *entity.MeetingProposal, loc *time.Location, now time.Time) entity.TimeInterval {
	start := now.Add(defaultLeadTime)
	urgency := entity.UrgencyUnspecified

	if proposal != nil {
		urgency = proposal.Urgency
		if resolved, ok := resolveProposedStart(proposal, loc, now); ok {
			start = resolved
		}
	}

	// Days are counted in UTC so the window length does not shift across DST changes.
	start = start.UTC()
	return entity.NewTimeInterval(start, start.AddDate(0, 0, SearchDaysAhead(urgency)))
}

func resolveProposedStart(proposal *entity.MeetingProposal, loc *time.Location, now time.Time) (time.Time, bool) {
	for _, pt := range proposal.ProposedTimes {
		text := strings.ToLower(pt.Datetime)
		if text == "" {
			continue
		}

		for _, rule := range relativeRules {
			if strings.Contains(text, rule.phrase) {
				return rule.resolve(now, loc), true
			}
		}

		if pt.Type != entity.ProposedSpecificDatetime {
			continue
		}
		if at, ok := ParseProposedDatetime(pt, proposal.Constraints.SenderTimezone, loc); ok && !at.Before(now) {
			return at, true
		}
	}
	return time.Time{}, false
}

// ParseProposedDatetime reads the entry's datetime as an absolute instant.
// Strings without an offset are read in the entry's timezone, then the sender's, then fallback.
func ParseProposedDatetime(pt entity.ProposedTime, senderTimezone string, fallback *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(pt.Datetime)
	if raw == "" {
		return time.Time{}, false
	}

	loc := fallback
	for _, name := range []string{pt.Timezone, senderTimezone} {
		if name == "" {
			continue
		}
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
			break
		}
	}
	if loc == nil {
		loc = time.UTC
	}

	at, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at.UTC(), true
}
