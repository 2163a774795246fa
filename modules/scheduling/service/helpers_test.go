package service

import (
	"testing"
	"time"

	"meeting-slot-api/modules/scheduling/entity"

	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func utc(t *testing.T, s string) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return at.UTC()
}

func interval(t *testing.T, start, end string) entity.TimeInterval {
	t.Helper()
	return entity.NewTimeInterval(utc(t, start), utc(t, end))
}

func defaultPrefs() entity.UserPreferences {
	return entity.UserPreferences{
		WorkDays:               []int{1, 2, 3, 4, 5},
		WorkHoursStart:         "09:00",
		WorkHoursEnd:           "18:00",
		Timezone:               "America/Los_Angeles",
		DefaultDurationMinutes: 30,
		BufferMinutes:          10,
	}
}
