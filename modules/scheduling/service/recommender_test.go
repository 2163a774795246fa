package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"meeting-slot-api/modules/scheduling/entity"
	"meeting-slot-api/modules/scheduling/ics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	proposal *entity.MeetingProposal
	err      error
	input    entity.ExtractionInput
}

func (f *fakeExtractor) Extract(_ context.Context, input entity.ExtractionInput) (*entity.MeetingProposal, error) {
	f.input = input
	return f.proposal, f.err
}

type fakePreferences struct {
	prefs *entity.UserPreferences
	err   error
	asked string
}

func (f *fakePreferences) FindPreferences(_ context.Context, userEmail string) (*entity.UserPreferences, error) {
	f.asked = userEmail
	return f.prefs, f.err
}

type fakeArchiver struct {
	subject string
	value   any
	err     error
}

func (f *fakeArchiver) ArchiveJSON(_ context.Context, subject string, value any) (string, error) {
	f.subject = subject
	f.value = value
	if f.err != nil {
		return "", f.err
	}
	return "traces/2026-10-14/catch-up-abc1234.json", nil
}

func nextWeekProposal() *entity.MeetingProposal {
	return &entity.MeetingProposal{
		ProposedTimes: []entity.ProposedTime{{Type: entity.ProposedDayOnly, Datetime: "next week"}},
		Duration:      entity.DurationHint{Confidence: entity.ConfidenceUnknown},
		Urgency:       entity.UrgencyFlexible,
	}
}

func testEmail() entity.EmailMessage {
	return entity.EmailMessage{
		MessageID: "<abc@mail>",
		From:      entity.EmailPerson{Address: "bob@example.com", Name: "Bob"},
		To:        []entity.EmailPerson{{Address: userEmail}},
		Subject:   "Catch up",
		FullBody:  "Could we meet next week?",
	}
}

type recordingCalendar struct {
	events []entity.CalendarEvent
	asked  []entity.TimeInterval
}

func (c *recordingCalendar) EventsBetween(window entity.TimeInterval) []entity.CalendarEvent {
	c.asked = append(c.asked, window)
	return c.events
}

// February 2027, four months past the test clock
func farOutProposal() *entity.MeetingProposal {
	return &entity.MeetingProposal{
		ProposedTimes: []entity.ProposedTime{{Type: entity.ProposedSpecificDatetime, Datetime: "2027-02-16T17:00:00Z"}},
		Duration:      entity.DurationHint{Confidence: entity.ConfidenceUnknown},
		Urgency:       entity.UrgencyImmediate,
	}
}

// Every Tuesday 17:00Z to 01:00Z, organised by the user, from October 2026.
func weeklyReviewICS() string {
	return strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//Calendar//EN",
		"BEGIN:VEVENT",
		"UID:weekly-review-1",
		"DTSTAMP:20261001T120000Z",
		"DTSTART:20261006T170000Z",
		"DTEND:20261007T010000Z",
		"RRULE:FREQ=WEEKLY",
		"SUMMARY:Weekly review",
		"ORGANIZER:mailto:" + userEmail,
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
}

// Wednesday 14 Oct 2026, 05:00 in Los Angeles
func wednesdayClock(t *testing.T) func() time.Time {
	now := utc(t, "2026-10-14T12:00:00Z")
	return func() time.Time { return now }
}

func newTestRecommender(t *testing.T, ext Extractor, cfg RecommenderConfig, opts ...RecommenderOption) *Recommender {
	if cfg.DefaultPreferences.Timezone == "" {
		cfg.DefaultPreferences = defaultPrefs()
	}
	return NewRecommender(ext, cfg, append([]RecommenderOption{WithClock(wednesdayClock(t))}, opts...)...)
}

func TestSuggestNextWeekEmptyCalendar(t *testing.T) {
	ext := &fakeExtractor{proposal: nextWeekProposal()}
	r := newTestRecommender(t, ext, RecommenderConfig{})

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail})

	assert.Equal(t, StatusSuggested, outcome.Status)
	// 09:00-09:30 PDT on Monday, Tuesday and Wednesday of next week
	assert.Equal(t, []entity.TimeInterval{
		interval(t, "2026-10-19T16:00:00Z", "2026-10-19T16:30:00Z"),
		interval(t, "2026-10-20T16:00:00Z", "2026-10-20T16:30:00Z"),
		interval(t, "2026-10-21T16:00:00Z", "2026-10-21T16:30:00Z"),
	}, outcome.Slots)
	assert.Nil(t, outcome.Trace)
	assert.Equal(t, "America/Los_Angeles", outcome.Location.String())

	assert.Equal(t, "Bob", ext.input.SenderDisplayNameOrAddress)
	assert.Equal(t, "Catch up", ext.input.Subject)
	assert.Equal(t, "<abc@mail>", ext.input.MessageKey)
	assert.Equal(t, utc(t, "2026-10-14T12:00:00Z"), ext.input.CurrentDate)
}

func TestSuggestScoresInUserTimezoneWhenConfigured(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{ScoreInUserTimezone: true})

	slots := r.SuggestTimes(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail})

	// 10:00 PDT is the first core-hours slot
	assert.Equal(t, []entity.TimeInterval{
		interval(t, "2026-10-19T17:00:00Z", "2026-10-19T17:30:00Z"),
		interval(t, "2026-10-20T17:00:00Z", "2026-10-20T17:30:00Z"),
		interval(t, "2026-10-21T17:00:00Z", "2026-10-21T17:30:00Z"),
	}, slots)
}

func TestSuggestAvoidsOrganisedEvents(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{})
	events := []entity.CalendarEvent{
		event(t, "2026-10-19T16:00:00Z", "2026-10-19T17:00:00Z", userEmail),
	}

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, CalendarEvents: events})

	require.Len(t, outcome.Slots, 3)
	assert.Equal(t, utc(t, "2026-10-20T16:00:00Z"), outcome.Slots[0].StartsAt)
	for _, slot := range outcome.Slots {
		assert.False(t, slot.Overlaps(interval(t, "2026-10-19T15:50:00Z", "2026-10-19T17:10:00Z")))
	}
}

func TestSuggestIgnoresDeclinedEvents(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{})
	events := []entity.CalendarEvent{
		event(t, "2026-10-19T16:00:00Z", "2026-10-19T17:00:00Z", "bob@example.com",
			invitee(userEmail, entity.AttendanceDeclined)),
	}

	slots := r.SuggestTimes(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, CalendarEvents: events})

	require.NotEmpty(t, slots)
	assert.Equal(t, utc(t, "2026-10-19T16:00:00Z"), slots[0].StartsAt)
}

func TestSuggestExtractionFailureIsNotNoSlots(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{err: errors.New("llm unavailable")}, RecommenderConfig{})

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail})

	assert.Equal(t, StatusExtractionFailed, outcome.Status)
	assert.Contains(t, outcome.Reason, "llm unavailable")
	assert.Empty(t, outcome.Slots)
	assert.NotNil(t, outcome.Slots)
	assert.Empty(t, r.SuggestTimes(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail}))
}

func TestSuggestNilProposalCountsAsExtractionFailure(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{}, RecommenderConfig{})

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail})

	assert.Equal(t, StatusExtractionFailed, outcome.Status)
}

func TestSuggestNoSlots(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{})
	prefs := defaultPrefs()
	prefs.WorkDays = []int{}

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, UserPreferences: &prefs})

	assert.Equal(t, StatusNoSlots, outcome.Status)
	assert.NotEmpty(t, outcome.Reason)
	assert.Empty(t, outcome.Slots)
}

func TestSuggestInvalidPreferences(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{})
	prefs := defaultPrefs()
	prefs.Timezone = "Mars/Olympus"

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, UserPreferences: &prefs})

	assert.Equal(t, StatusInvalidPreferences, outcome.Status)
	assert.Empty(t, outcome.Slots)
}

func TestSuggestHonoursCount(t *testing.T) {
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{DefaultCount: 2})

	assert.Len(t, r.SuggestTimes(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail}), 2)
	assert.Len(t, r.SuggestTimes(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, Count: 5}), 5)
}

func TestSuggestPreferenceResolutionOrder(t *testing.T) {
	london := defaultPrefs()
	london.Timezone = "Europe/London"
	store := &fakePreferences{prefs: &london}
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{}, WithPreferencesSource(store))

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail})
	assert.Equal(t, "Europe/London", outcome.Location.String())
	assert.Equal(t, userEmail, store.asked)

	tokyo := defaultPrefs()
	tokyo.Timezone = "Asia/Tokyo"
	outcome = r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, UserPreferences: &tokyo})
	assert.Equal(t, "Asia/Tokyo", outcome.Location.String())

	store.prefs = nil
	outcome = r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail})
	assert.Equal(t, "America/Los_Angeles", outcome.Location.String())

	store.err = errors.New("db down")
	outcome = r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail})
	assert.Equal(t, "America/Los_Angeles", outcome.Location.String())
	assert.Equal(t, StatusSuggested, outcome.Status)
}

func TestSuggestDebugTraceIsArchived(t *testing.T) {
	archiver := &fakeArchiver{}
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{}, WithTraceArchiver(archiver))

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, Debug: true})

	require.NotNil(t, outcome.Trace)
	assert.Equal(t, 30, outcome.Trace.DurationMinutes)
	assert.Equal(t, utc(t, "2026-10-19T16:00:00Z"), outcome.Trace.SearchRange.StartsAt)
	assert.Equal(t, utc(t, "2026-11-02T16:00:00Z"), outcome.Trace.SearchRange.EndsAt)
	assert.Empty(t, outcome.Trace.BusyIntervals)
	assert.NotEmpty(t, outcome.Trace.FreeSlots)
	assert.Equal(t, outcome.Slots, outcome.Trace.SelectedSlots)
	assert.Equal(t, nextWeekProposal(), outcome.Trace.Proposal)

	assert.Equal(t, "Catch up", archiver.subject)
	assert.Same(t, outcome.Trace, archiver.value)
	assert.Equal(t, "traces/2026-10-14/catch-up-abc1234.json", outcome.Trace.ArchiveKey)
}

func TestSuggestArchiveFailureIsNotFatal(t *testing.T) {
	archiver := &fakeArchiver{err: errors.New("access denied")}
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{}, WithTraceArchiver(archiver))

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, Debug: true})

	assert.Equal(t, StatusSuggested, outcome.Status)
	require.NotNil(t, outcome.Trace)
	assert.Empty(t, outcome.Trace.ArchiveKey)
}

func TestSuggestReadsCalendarForTheSearchWindow(t *testing.T) {
	cal := &recordingCalendar{events: []entity.CalendarEvent{
		event(t, "2026-10-19T16:00:00Z", "2026-10-19T17:00:00Z", userEmail),
	}}
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{})

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, Calendar: cal, Debug: true})

	require.NotNil(t, outcome.Trace)
	assert.Equal(t, []entity.TimeInterval{outcome.Trace.SearchRange}, cal.asked)
	require.NotEmpty(t, outcome.Slots)
	assert.Equal(t, utc(t, "2026-10-20T16:00:00Z"), outcome.Slots[0].StartsAt)
}

func TestSuggestExpandsRecurringCalendarMonthsAhead(t *testing.T) {
	cal, err := ics.ParseString(weeklyReviewICS())
	require.NoError(t, err)
	r := newTestRecommender(t, &fakeExtractor{proposal: farOutProposal()}, RecommenderConfig{})

	outcome := r.Suggest(context.Background(), SuggestInput{Email: testEmail(), UserEmail: userEmail, Calendar: cal, Debug: true})

	require.Equal(t, StatusSuggested, outcome.Status)
	require.NotNil(t, outcome.Trace)
	assert.Equal(t, interval(t, "2027-02-16T17:00:00Z", "2027-02-19T17:00:00Z"), outcome.Trace.SearchRange)
	// the 16 Feb occurrence padded by the 10 minute buffer
	assert.Equal(t, []entity.TimeInterval{
		interval(t, "2027-02-16T16:50:00Z", "2027-02-17T01:10:00Z"),
	}, outcome.Trace.BusyIntervals)

	meeting := interval(t, "2027-02-16T17:00:00Z", "2027-02-17T01:00:00Z")
	require.NotEmpty(t, outcome.Trace.FreeSlots)
	assert.Equal(t, utc(t, "2027-02-17T01:15:00Z"), outcome.Trace.FreeSlots[0].StartsAt)
	for _, slot := range outcome.Trace.FreeSlots {
		assert.False(t, slot.Overlaps(meeting), "free slot %v overlaps the weekly review", slot)
	}
	for _, slot := range outcome.Slots {
		assert.False(t, slot.Overlaps(meeting), "selected slot %v overlaps the weekly review", slot)
	}
}

func TestSuggestBackToBackPreferenceDropsBuffer(t *testing.T) {
	prefs := defaultPrefs()
	prefs.AllowBackToBack = true
	r := newTestRecommender(t, &fakeExtractor{proposal: nextWeekProposal()}, RecommenderConfig{})
	events := []entity.CalendarEvent{
		event(t, "2026-10-19T16:00:00Z", "2026-10-19T17:00:00Z", userEmail),
	}

	outcome := r.Suggest(context.Background(), SuggestInput{
		Email: testEmail(), UserEmail: userEmail, CalendarEvents: events, UserPreferences: &prefs, Debug: true,
	})

	require.NotNil(t, outcome.Trace)
	assert.Equal(t, []entity.TimeInterval{
		interval(t, "2026-10-19T16:00:00Z", "2026-10-19T17:00:00Z"),
	}, outcome.Trace.BusyIntervals)
	// Monday opens right after the event ends
	assert.Equal(t, utc(t, "2026-10-19T17:00:00Z"), outcome.Trace.FreeSlots[0].StartsAt)
}
