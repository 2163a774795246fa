package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"meeting-slot-api/core/database"
	"meeting-slot-api/core/logger"
	"meeting-slot-api/modules/scheduling/entity"

	"github.com/lib/pq"
)

type preferencesRow struct {
	UserEmail              string        `db:"user_email"`
	WorkDays               pq.Int64Array `db:"work_days"`
	WorkHoursStart         string        `db:"work_hours_start"`
	WorkHoursEnd           string        `db:"work_hours_end"`
	Timezone               string        `db:"timezone"`
	DefaultDurationMinutes int           `db:"default_duration_minutes"`
	BufferMinutes          int           `db:"buffer_minutes"`
	AllowBackToBack        bool          `db:"allow_back_to_back"`
	UpdatedAt              time.Time     `db:"updated_at"`
}

func (r preferencesRow) toEntity() *entity.UserPreferences {
	days := make([]int, len(r.WorkDays))
	for i, d := range r.WorkDays {
		days[i] = int(d)
	}
	return &entity.UserPreferences{
		WorkDays:               days,
		WorkHoursStart:         r.WorkHoursStart,
		WorkHoursEnd:           r.WorkHoursEnd,
		Timezone:               r.Timezone,
		DefaultDurationMinutes: r.DefaultDurationMinutes,
		BufferMinutes:          r.BufferMinutes,
		AllowBackToBack:        r.AllowBackToBack,
	}
}

// PreferencesRepository stores user preferences keyed by lower-cased email.
type PreferencesRepository struct {
	DB database.IDatabase
}

func NewPreferencesRepository(db database.IDatabase) *PreferencesRepository {
	return &PreferencesRepository{DB: db}
}

type PreferencesRepositoryInterface interface {
	FindPreferences(ctx context.Context, userEmail string) (*entity.UserPreferences, error)
	SavePreferences(ctx context.Context, userEmail string, prefs entity.UserPreferences) error
}

// FindPreferences returns nil, nil when the user has nothing stored.
func (r *PreferencesRepository) FindPreferences(ctx context.Context, userEmail string) (*entity.UserPreferences, error) {
	query := `
		SELECT user_email, work_days, work_hours_start, work_hours_end, timezone,
		       default_duration_minutes, buffer_minutes, allow_back_to_back, updated_at
		FROM user_preferences WHERE user_email = $1
	`

	var row preferencesRow
	if err := r.DB.GetContext(ctx, &row, query, normaliseEmail(userEmail)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("PreferencesRepository:FindPreferences", "error", err)
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *PreferencesRepository) SavePreferences(ctx context.Context, userEmail string, prefs entity.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (user_email, work_days, work_hours_start, work_hours_end, timezone,
		                              default_duration_minutes, buffer_minutes, allow_back_to_back, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_email) DO UPDATE SET
			work_days = EXCLUDED.work_days,
			work_hours_start = EXCLUDED.work_hours_start,
			work_hours_end = EXCLUDED.work_hours_end,
			timezone = EXCLUDED.timezone,
			default_duration_minutes = EXCLUDED.default_duration_minutes,
			buffer_minutes = EXCLUDED.buffer_minutes,
			allow_back_to_back = EXCLUDED.allow_back_to_back,
			updated_at = NOW()
	`

	days := make(pq.Int64Array, len(prefs.WorkDays))
	for i, d := range prefs.WorkDays {
		days[i] = int64(d)
	}

	err := r.DB.ExecContext(ctx, query,
		normaliseEmail(userEmail), days, prefs.WorkHoursStart, prefs.WorkHoursEnd, prefs.Timezone,
		prefs.DefaultDurationMinutes, prefs.BufferMinutes, prefs.AllowBackToBack)
	if err != nil {
		logger.Error("PreferencesRepository:SavePreferences", "error", err)
		return err
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
