package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meeting-slot-api/core/logger"
	"meeting-slot-api/modules/scheduling/entity"
)

const DefaultSlotCount = 3

// Status tells callers why an Outcome has the slots it has.
type Status string

const (
	StatusSuggested          Status = "suggested"
	StatusNoSlots            Status = "no_slots"
	StatusExtractionFailed   Status = "extraction_failed"
	StatusInvalidPreferences Status = "invalid_preferences"
)

// Extractor turns an email into a structured meeting proposal.
type Extractor interface {
	Extract(ctx context.Context, input entity.ExtractionInput) (*entity.MeetingProposal, error)
}

// PreferencesSource looks up a user's stored preferences. A nil result means none are stored.
type PreferencesSource interface {
	FindPreferences(ctx context.Context, userEmail string) (*entity.UserPreferences, error)
}

// TraceArchiver keeps debug traces for later inspection and returns where it put them.
type TraceArchiver interface {
	ArchiveJSON(ctx context.Context, subject string, value any) (string, error)
}

// CalendarSource yields the events that overlap a window, expanding recurrences as needed.
type CalendarSource interface {
	EventsBetween(window entity.TimeInterval) []entity.CalendarEvent
}

type SuggestInput struct {
	Email           entity.EmailMessage
	CalendarEvents  []entity.CalendarEvent
	UserEmail       string
	UserPreferences *entity.UserPreferences
	Count           int
	Debug           bool

	// Calendar is read once the search window is known. Optional.
	Calendar CalendarSource
}

// Trace is the intermediate state of one suggestion, returned in debug mode.
type Trace struct {
	Proposal        *entity.MeetingProposal `json:"proposal_extracted_from_llm"`
	DurationMinutes int                     `json:"duration"`
	SearchRange     entity.TimeInterval     `json:"search_range"`
	BusyIntervals   []entity.TimeInterval   `json:"busy_intervals"`
	FreeSlots       []entity.TimeInterval   `json:"free_slots"`
	SelectedSlots   []entity.TimeInterval   `json:"selected_slots"`
	Preferences     entity.UserPreferences  `json:"preferences"`
	ArchiveKey      string                  `json:"archive_key,omitempty"`
}

type Outcome struct {
	Status Status                `json:"status"`
	Reason string                `json:"reason,omitempty"`
	Slots  []entity.TimeInterval `json:"slots"`
	Trace  *Trace                `json:"trace,omitempty"`

	// Location is the user's timezone once preferences resolved, nil before that.
	Location      *time.Location `json:"-"`
	FreeSlotCount int            `json:"-"`
}

type RecommenderConfig struct {
	DefaultPreferences entity.UserPreferences
	DefaultCount       int
	// ScoreInUserTimezone scores hour and weekday in the user's zone instead of UTC.
	ScoreInUserTimezone bool
}

// Recommender runs the whole pipeline: extract, interpret, find free time, rank.
type Recommender struct {
	extractor   Extractor
	preferences PreferencesSource
	archiver    TraceArchiver
	cfg         RecommenderConfig
	now         func() time.Time
}

type RecommenderOption func(*Recommender)

func WithPreferencesSource(src PreferencesSource) RecommenderOption {
	return func(r *Recommender) { r.preferences = src }
}

func WithTraceArchiver(archiver TraceArchiver) RecommenderOption {
	return func(r *Recommender) { r.archiver = archiver }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) RecommenderOption {
	return func(r *Recommender) { r.now = now }
}

func NewRecommender(extractor Extractor, cfg RecommenderConfig, opts ...RecommenderOption) *Recommender {
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = DefaultSlotCount
	}
	r := &Recommender{
		extractor: extractor,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SuggestTimes is Suggest with the outcome collapsed to its slots.
func (r *Recommender) SuggestTimes(ctx context.Context, input SuggestInput) []entity.TimeInterval {
	return r.Suggest(ctx, input).Slots
}

// Suggest never fails: extraction errors and invalid preferences come back as a status.
func (r *Recommender) Suggest(ctx context.Context, input SuggestInput) Outcome {
	now := r.now()

	proposal, err := r.extractor.Extract(ctx, entity.NewExtractionInput(input.Email, now))
	if err != nil || proposal == nil {
		reason := "extractor returned no proposal"
		if err != nil {
			reason = err.Error()
		}
		logger.Warn("Recommender:Suggest:ExtractionFailed",
			"user_email", input.UserEmail,
			"message_id", input.Email.CacheKey(),
			"error", reason,
		)
		return Outcome{Status: StatusExtractionFailed, Reason: reason, Slots: []entity.TimeInterval{}}
	}

	prefs := r.resolvePreferences(ctx, input)
	schedule, err := prefs.Schedule()
	if err != nil {
		logger.Warn("Recommender:Suggest:InvalidPreferences", "user_email", input.UserEmail, "error", err)
		return Outcome{Status: StatusInvalidPreferences, Reason: err.Error(), Slots: []entity.TimeInterval{}}
	}
	loc := schedule.Location

	duration := InferDuration(proposal, prefs.DefaultDurationMinutes)
	searchRange := InferSearchRange(proposal, loc, now)

	events := input.CalendarEvents
	if input.Calendar != nil {
		events = append(append([]entity.CalendarEvent(nil), events...), input.Calendar.EventsBetween(searchRange)...)
	}

	busy := MergeIntervals(BusyIntervals(events, BusyQuery{
		UserEmail:   input.UserEmail,
		SearchStart: searchRange.StartsAt,
		SearchEnd:   searchRange.EndsAt,
		Buffer:      prefs.EffectiveBuffer(),
		Location:    loc,
	}))

	free, err := FreeSlots(busy, duration, searchRange.StartsAt, searchRange.EndsAt, prefs)
	if err != nil {
		logger.Warn("Recommender:Suggest:FreeSlots", "user_email", input.UserEmail, "error", err)
		return Outcome{Status: StatusInvalidPreferences, Reason: err.Error(), Slots: []entity.TimeInterval{}, Location: loc}
	}

	scorer := Scorer{Location: time.UTC, UserLocation: loc, Now: now}
	if r.cfg.ScoreInUserTimezone {
		scorer.Location = loc
	}

	count := input.Count
	if count <= 0 {
		count = r.cfg.DefaultCount
	}
	selected := SelectSlots(ScoreSlots(free, proposal, scorer), count, loc)

	outcome := Outcome{Status: StatusSuggested, Slots: selected, Location: loc, FreeSlotCount: len(free)}
	if len(selected) == 0 {
		outcome.Status = StatusNoSlots
		outcome.Reason = fmt.Sprintf("no free %d minute slot between %s and %s",
			duration, searchRange.StartsAt.Format(time.RFC3339), searchRange.EndsAt.Format(time.RFC3339))
	}

	logger.Info("Recommender:Suggest:Done",
		"user_email", input.UserEmail,
		"status", outcome.Status,
		"duration", duration,
		"busy", len(busy),
		"free", len(free),
		"selected", len(selected),
	)

	if input.Debug {
		outcome.Trace = &Trace{
			Proposal:        proposal,
			DurationMinutes: duration,
			SearchRange:     searchRange,
			BusyIntervals:   busy,
			FreeSlots:       free,
			SelectedSlots:   selected,
			Preferences:     prefs,
		}
		r.archive(ctx, input.Email.Subject, outcome.Trace)
	}

	return outcome
}

// resolvePreferences uses the request value, then the stored value, then the defaults.
func (r *Recommender) resolvePreferences(ctx context.Context, input SuggestInput) entity.UserPreferences {
	if input.UserPreferences != nil {
		return *input.UserPreferences
	}
	if r.preferences != nil && strings.TrimSpace(input.UserEmail) != "" {
		stored, err := r.preferences.FindPreferences(ctx, input.UserEmail)
		if err != nil {
			logger.Warn("Recommender:ResolvePreferences:Lookup", "user_email", input.UserEmail, "error", err)
		} else if stored != nil {
			return *stored
		}
	}
	return r.cfg.DefaultPreferences
}

func (r *Recommender) archive(ctx context.Context, subject string, trace *Trace) {
	if r.archiver == nil {
		return
	}
	key, err := r.archiver.ArchiveJSON(ctx, subject, trace)
	if err != nil {
		logger.Warn("Recommender:Archive:Upload", "subject", subject, "error", err)
		return
	}
	trace.ArchiveKey = key
}
