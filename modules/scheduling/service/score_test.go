package service

import (
	"testing"
	"time"

	"meeting-slot-api/modules/scheduling/entity"

	"github.com/stretchr/testify/assert"
)

func slotAt(t *testing.T, start string) entity.TimeInterval {
	t.Helper()
	at := utc(t, start)
	return entity.NewTimeInterval(at, at.Add(30*time.Minute))
}

func TestScoreBaseRules(t *testing.T) {
	scorer := Scorer{Location: time.UTC}
	empty := proposalWith(entity.UrgencyFlexible)

	tests := []struct {
		name  string
		start string
		want  int
	}{
		{"core hours", "2026-10-19T14:00:00Z", 120},
		{"nine o'clock", "2026-10-19T09:00:00Z", 110},
		{"four pm bonus and late penalty", "2026-10-19T16:00:00Z", 100},
		{"evening", "2026-10-19T19:00:00Z", 90},
		{"early morning", "2026-10-19T07:00:00Z", 80},
		{"weekend", "2026-10-17T12:00:00Z", 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score(slotAt(t, tt.start), empty))
		})
	}
}

func TestScoreAfternoonConstraint(t *testing.T) {
	scorer := Scorer{Location: time.UTC}
	morning := slotAt(t, "2026-10-19T09:00:00Z")
	afternoon := slotAt(t, "2026-10-19T14:00:00Z")

	plain := proposalWith(entity.UrgencyFlexible)
	constrained := proposalWith(entity.UrgencyFlexible)
	constrained.Constraints.MustBeAfternoon = true

	assert.Greater(t, scorer.Score(afternoon, constrained), scorer.Score(afternoon, plain))
	assert.Less(t, scorer.Score(morning, constrained), scorer.Score(morning, plain))
	assert.Greater(t, scorer.Score(afternoon, constrained), scorer.Score(morning, constrained))
}

func TestScoreAfternoonBeatsMorningAtEqualBaseline(t *testing.T) {
	scorer := Scorer{Location: time.UTC}
	morning := slotAt(t, "2026-10-19T11:00:00Z")
	afternoon := slotAt(t, "2026-10-19T14:00:00Z")
	plain := proposalWith(entity.UrgencyFlexible)
	constrained := proposalWith(entity.UrgencyFlexible)
	constrained.Constraints.MustBeAfternoon = true

	assert.Equal(t, scorer.Score(morning, plain), scorer.Score(afternoon, plain))

	ranked := ScoreSlots([]entity.TimeInterval{morning, afternoon}, constrained, scorer)
	assert.Equal(t, afternoon, ranked[0].TimeInterval)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestScoreMorningConstraint(t *testing.T) {
	scorer := Scorer{Location: time.UTC}
	p := proposalWith(entity.UrgencyFlexible)
	p.Constraints.MustBeMorning = true

	assert.Equal(t, 150, scorer.Score(slotAt(t, "2026-10-19T10:00:00Z"), p))
	assert.Equal(t, 80, scorer.Score(slotAt(t, "2026-10-19T14:00:00Z"), p))
}

func TestScoreProposedTimes(t *testing.T) {
	scorer := Scorer{Location: time.UTC}
	p := proposalWith(entity.UrgencyFlexible,
		entity.ProposedTime{Type: entity.ProposedSpecificDatetime, Datetime: "2026-10-20T13:00:00Z"},
		entity.ProposedTime{Type: entity.ProposedSpecificDatetime, Datetime: "not a date"},
		entity.ProposedTime{Type: entity.ProposedDayOnly, DayOfWeek: "tuesday"},
		entity.ProposedTime{Type: entity.ProposedDayTimeRange, DayOfWeek: "TUESDAY"},
	)

	// Tuesday 14:00: core hours, near the specific time, two weekday matches
	assert.Equal(t, 100+20+50+30+30, scorer.Score(slotAt(t, "2026-10-20T14:00:00Z"), p))
	// Tuesday 15:30 is more than 2h from 13:00
	assert.Equal(t, 100+20+30+30, scorer.Score(slotAt(t, "2026-10-20T15:30:00Z"), p))
	// Monday matches nothing
	assert.Equal(t, 120, scorer.Score(slotAt(t, "2026-10-19T14:00:00Z"), p))
}

func TestMatchesWeekdayNeedsFullName(t *testing.T) {
	assert.True(t, matchesWeekday("Tuesday", time.Tuesday))
	assert.True(t, matchesWeekday(" tuesday ", time.Tuesday))
	assert.False(t, matchesWeekday("Tue", time.Tuesday))
	assert.False(t, matchesWeekday("Monday", time.Tuesday))

	scorer := Scorer{Location: time.UTC}
	p := proposalWith(entity.UrgencyFlexible, entity.ProposedTime{Type: entity.ProposedDayOnly, DayOfWeek: "tue"})
	assert.Equal(t, 120, scorer.Score(slotAt(t, "2026-10-20T14:00:00Z"), p))
}

func TestScoreImmediateUrgency(t *testing.T) {
	now := utc(t, "2026-10-19T08:00:00Z")
	scorer := Scorer{Location: time.UTC, Now: now}
	p := proposalWith(entity.UrgencyImmediate)

	assert.Equal(t, 160, scorer.Score(slotAt(t, "2026-10-19T14:00:00Z"), p))
	assert.Equal(t, 120, scorer.Score(slotAt(t, "2026-10-21T14:00:00Z"), p))
}

func TestScoreClockLocation(t *testing.T) {
	la := mustLoad(t, "America/Los_Angeles")
	// 10:00 PDT / 17:00 UTC
	slot := slotAt(t, "2026-10-19T17:00:00Z")
	p := proposalWith(entity.UrgencyFlexible)

	assert.Equal(t, 90, Scorer{Location: time.UTC}.Score(slot, p))
	assert.Equal(t, 120, Scorer{Location: la}.Score(slot, p))
	assert.Equal(t, 90, Scorer{}.Score(slot, p))
}
