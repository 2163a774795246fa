package service

import (
	"sort"

	"meeting-slot-api/modules/scheduling/entity"
)

// MergeIntervals collapses overlapping or touching intervals into a sorted, disjoint set.
// The input slice is not modified.
func MergeIntervals(intervals []entity.TimeInterval) []entity.TimeInterval {
	if len(intervals) == 0 {
		return []entity.TimeInterval{}
	}

	sorted := make([]entity.TimeInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.Before(sorted[j].StartsAt)
	})

	merged := []entity.TimeInterval{sorted[0]}
	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]

		// Touching counts as overlapping
		if !current.StartsAt.After(last.EndsAt) {
			if current.EndsAt.After(last.EndsAt) {
				last.EndsAt = current.EndsAt
			}
			continue
		}
		merged = append(merged, current)
	}

	return merged
}
