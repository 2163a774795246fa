package service

import (
	"sort"
	"time"

	"meeting-slot-api/modules/scheduling/entity"
)

// ScoredSlot pairs a free slot with its score.
type ScoredSlot struct {
	entity.TimeInterval
	Score int `json:"score"`
}

// ScoreSlots scores every slot and sorts best first. Equal scores keep enumeration order.
func ScoreSlots(slots []entity.TimeInterval, proposal *entity.MeetingProposal, scorer Scorer) []ScoredSlot {
	scored := make([]ScoredSlot, len(slots))
	for i, slot := range slots {
		scored[i] = ScoredSlot{TimeInterval: slot, Score: scorer.Score(slot, proposal)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// SelectSlots picks up to count slots from a best-first list, one per local day first,
// then tops up by score ignoring the day rule.
func SelectSlots(scored []ScoredSlot, count int, loc *time.Location) []entity.TimeInterval {
	if count <= 0 || len(scored) == 0 {
		return []entity.TimeInterval{}
	}
	if loc == nil {
		loc = time.UTC
	}

	selected := make([]entity.TimeInterval, 0, count)
	taken := make(map[int64]bool, count)
	days := make(map[string]bool, count)

	for _, slot := range scored {
		if len(selected) == count {
			break
		}
		day := slot.StartsAt.In(loc).Format(time.DateOnly)
		if days[day] {
			continue
		}
		days[day] = true
		taken[slot.StartsAt.UnixNano()] = true
		selected = append(selected, slot.TimeInterval)
	}

	for _, slot := range scored {
		if len(selected) == count {
			break
		}
		if taken[slot.StartsAt.UnixNano()] {
			continue
		}
		taken[slot.StartsAt.UnixNano()] = true
		selected = append(selected, slot.TimeInterval)
	}

	return selected
}
