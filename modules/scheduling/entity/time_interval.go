package entity

import "time"

// TimeInterval is an absolute time range. StartsAt <= EndsAt.
type TimeInterval struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// NewTimeInterval builds an interval normalised to UTC.
func NewTimeInterval(start, end time.Time) TimeInterval {
	return TimeInterval{StartsAt: start.UTC(), EndsAt: end.UTC()}
}

func (t TimeInterval) Duration() time.Duration {
	return t.EndsAt.Sub(t.StartsAt)
}

// Overlaps reports whether the two intervals share any time. Touching intervals do not overlap.
func (t TimeInterval) Overlaps(other TimeInterval) bool {
	return t.StartsAt.Before(other.EndsAt) && t.EndsAt.After(other.StartsAt)
}

// Intersects is the closed-range check: touching intervals intersect.
func (t TimeInterval) Intersects(other TimeInterval) bool {
	return !t.StartsAt.After(other.EndsAt) && !t.EndsAt.Before(other.StartsAt)
}

