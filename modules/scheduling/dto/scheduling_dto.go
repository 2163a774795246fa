package dto

import (
	"time"

	"meeting-slot-api/modules/scheduling/entity"
)

// ===================== Request DTOs =====================

// SuggestSlotsRequest for POST /slots/suggest
type SuggestSlotsRequest struct {
	EmailMessage    entity.EmailMessage    `json:"email_message"`
	CalendarEvents  []entity.CalendarEvent `json:"calendar_events"`
	CalendarICS     string                 `json:"calendar_ics,omitempty"` // iCalendar export, merged with calendar_events
	UserPreferences *PreferencesRequest    `json:"user_preferences,omitempty"`
	Count           int                    `json:"count"`
	Debug           bool                   `json:"debug"`
}

// PreferencesRequest for PUT /preferences and inline overrides
type PreferencesRequest struct {
	WorkDays               []int  `json:"work_days"`
	WorkHoursStart         string `json:"work_hours_start"`
	WorkHoursEnd           string `json:"work_hours_end"`
	Timezone               string `json:"timezone"`
	DefaultDurationMinutes int    `json:"default_duration_minutes"`
	BufferMinutes          int    `json:"buffer_minutes"`
	AllowBackToBack        bool   `json:"allow_back_to_back"`
}

func (r *PreferencesRequest) ToEntity() entity.UserPreferences {
	return entity.UserPreferences{
		WorkDays:               append([]int(nil), r.WorkDays...),
		WorkHoursStart:         r.WorkHoursStart,
		WorkHoursEnd:           r.WorkHoursEnd,
		Timezone:               r.Timezone,
		DefaultDurationMinutes: r.DefaultDurationMinutes,
		BufferMinutes:          r.BufferMinutes,
		AllowBackToBack:        r.AllowBackToBack,
	}
}

// InboundEmailRequest for POST /emails/inbound
type InboundEmailRequest struct {
	EmailMessage   entity.EmailMessage    `json:"email_message"`
	CalendarEvents []entity.CalendarEvent `json:"calendar_events"`
	CalendarICS    string                 `json:"calendar_ics,omitempty"`
}

// ===================== Response DTOs =====================

type SlotResponse struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Display  string    `json:"display"`
}

// SuggestSlotsResponse carries status, reason and trace only in debug mode.
type SuggestSlotsResponse struct {
	Slots  []SlotResponse `json:"slots"`
	Status string         `json:"status,omitempty"`
	Reason string         `json:"reason,omitempty"`
	Trace  any            `json:"trace,omitempty"`
}

type PreferencesResponse struct {
	UserEmail string `json:"user_email"`
	Stored    bool   `json:"stored"`
	PreferencesRequest
}

type InboundEmailResponse struct {
	TaskID string `json:"task_id"`
}

type DraftResponse struct {
	ID        string               `json:"id"`
	ThreadID  string               `json:"thread_id,omitempty"`
	To        []entity.EmailPerson `json:"to"`
	Cc        []entity.EmailPerson `json:"cc"`
	Bcc       []entity.EmailPerson `json:"bcc"`
	Subject   string               `json:"subject"`
	DraftBody string               `json:"draft_body"`
	CreatedAt time.Time            `json:"created_at"`
}

// ===================== Mappers =====================

func ToPreferencesResponse(userEmail string, prefs entity.UserPreferences, stored bool) *PreferencesResponse {
	return &PreferencesResponse{
		UserEmail: userEmail,
		Stored:    stored,
		PreferencesRequest: PreferencesRequest{
			WorkDays:               prefs.WorkDays,
			WorkHoursStart:         prefs.WorkHoursStart,
			WorkHoursEnd:           prefs.WorkHoursEnd,
			Timezone:               prefs.Timezone,
			DefaultDurationMinutes: prefs.DefaultDurationMinutes,
			BufferMinutes:          prefs.BufferMinutes,
			AllowBackToBack:        prefs.AllowBackToBack,
		},
	}
}

func ToDraftResponse(d entity.DraftEmailMessage) DraftResponse {
	return DraftResponse{
		ID:        d.ID.String(),
		ThreadID:  d.ThreadID,
		To:        d.To,
		Cc:        d.Cc,
		Bcc:       d.Bcc,
		Subject:   d.Subject,
		DraftBody: d.DraftBody,
		CreatedAt: d.CreatedAt,
	}
}
