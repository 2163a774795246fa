package service

import (
	"context"
	"strings"
	"time"

	"meeting-slot-api/core/constants"
	"meeting-slot-api/core/errors"
	"meeting-slot-api/core/logger"
	"meeting-slot-api/core/metrics"
	"meeting-slot-api/core/queue"
	"meeting-slot-api/modules/scheduling/dto"
	"meeting-slot-api/modules/scheduling/entity"
	"meeting-slot-api/modules/scheduling/ics"
	"meeting-slot-api/modules/scheduling/repository"
)

const maxSlotCount = 20

// ProposalClassifier screens inbound emails before the full extraction runs.
type ProposalClassifier interface {
	ContainsMeetingProposal(ctx context.Context, email entity.EmailMessage) (bool, error)
}

// InboundEmailPayload is the body of the email:suggest_slots task.
type InboundEmailPayload struct {
	UserEmail      string                 `json:"user_email"`
	EmailMessage   entity.EmailMessage    `json:"email_message"`
	CalendarEvents []entity.CalendarEvent `json:"calendar_events"`
	CalendarICS    string                 `json:"calendar_ics,omitempty"`
}

// SchedulingService handles slot suggestion business logic
type SchedulingService struct {
	recommender *Recommender
	classifier  ProposalClassifier
	prefsRepo   repository.PreferencesRepositoryInterface
	draftRepo   repository.DraftRepositoryInterface
	enqueuer    queue.Enqueuer
	metrics     *metrics.Metrics
	defaults    entity.UserPreferences
	now         func() time.Time
}

// SchedulingServiceInterface defines the service contract
type SchedulingServiceInterface interface {
	SuggestSlots(ctx context.Context, userEmail string, req *dto.SuggestSlotsRequest) (*dto.SuggestSlotsResponse, *errors.AppError)
	GetPreferences(ctx context.Context, userEmail string) (*dto.PreferencesResponse, *errors.AppError)
	UpdatePreferences(ctx context.Context, userEmail string, req *dto.PreferencesRequest) (*dto.PreferencesResponse, *errors.AppError)
	EnqueueInboundEmail(ctx context.Context, userEmail string, req *dto.InboundEmailRequest) (*dto.InboundEmailResponse, *errors.AppError)
	ListDrafts(ctx context.Context, userEmail string) ([]dto.DraftResponse, *errors.AppError)
	ProcessInboundEmail(ctx context.Context, payload InboundEmailPayload) (*entity.DraftEmailMessage, *errors.AppError)
}

type SchedulingServiceDeps struct {
	Recommender *Recommender
	Classifier  ProposalClassifier
	Preferences repository.PreferencesRepositoryInterface
	Drafts      repository.DraftRepositoryInterface
	Enqueuer    queue.Enqueuer // nil when the queue is disabled
	Metrics     *metrics.Metrics
	Defaults    entity.UserPreferences
	Now         func() time.Time
}

// NewSchedulingService creates a new scheduling service
func NewSchedulingService(deps SchedulingServiceDeps) SchedulingServiceInterface {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SchedulingService{
		recommender: deps.Recommender,
		classifier:  deps.Classifier,
		prefsRepo:   deps.Preferences,
		draftRepo:   deps.Drafts,
		enqueuer:    deps.Enqueuer,
		metrics:     deps.Metrics,
		defaults:    deps.Defaults,
		now:         now,
	}
}

// SuggestSlots runs the recommender for one email. Extraction failures are not errors here.
func (s *SchedulingService) SuggestSlots(ctx context.Context, userEmail string, req *dto.SuggestSlotsRequest) (*dto.SuggestSlotsResponse, *errors.AppError) {
	if appErr := validateEmail(req.EmailMessage); appErr != nil {
		return nil, appErr
	}
	if req.Count < 0 || req.Count > maxSlotCount {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "count must be between 0 and 20", nil)
	}

	calendar, appErr := parseCalendar(req.CalendarICS)
	if appErr != nil {
		return nil, appErr
	}

	input := SuggestInput{
		Email:          req.EmailMessage,
		CalendarEvents: req.CalendarEvents,
		UserEmail:      userEmail,
		Count:          req.Count,
		Debug:          req.Debug,
	}
	if calendar != nil {
		input.Calendar = calendar
	}
	if req.UserPreferences != nil {
		prefs := req.UserPreferences.ToEntity()
		if err := prefs.Validate(); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid user preferences: "+err.Error(), err)
		}
		input.UserPreferences = &prefs
	}

	outcome := s.suggest(ctx, input)

	loc := outcome.Location
	if loc == nil {
		loc = time.UTC
	}
	resp := &dto.SuggestSlotsResponse{Slots: make([]dto.SlotResponse, 0, len(outcome.Slots))}
	for _, slot := range outcome.Slots {
		resp.Slots = append(resp.Slots, dto.SlotResponse{
			StartsAt: slot.StartsAt,
			EndsAt:   slot.EndsAt,
			Display:  FormatSlot(slot, loc),
		})
	}
	if req.Debug {
		resp.Status = string(outcome.Status)
		resp.Reason = outcome.Reason
		if outcome.Trace != nil {
			resp.Trace = outcome.Trace
		}
	}
	return resp, nil
}

func (s *SchedulingService) suggest(ctx context.Context, input SuggestInput) Outcome {
	started := s.now()
	outcome := s.recommender.Suggest(ctx, input)
	s.metrics.ObserveSuggestion(string(outcome.Status), s.now().Sub(started), outcome.FreeSlotCount)
	return outcome
}

func (s *SchedulingService) GetPreferences(ctx context.Context, userEmail string) (*dto.PreferencesResponse, *errors.AppError) {
	prefs, err := s.prefsRepo.FindPreferences(ctx, userEmail)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get preferences", err)
	}
	if prefs == nil {
		return dto.ToPreferencesResponse(userEmail, s.defaults, false), nil
	}
	return dto.ToPreferencesResponse(userEmail, *prefs, true), nil
}

func (s *SchedulingService) UpdatePreferences(ctx context.Context, userEmail string, req *dto.PreferencesRequest) (*dto.PreferencesResponse, *errors.AppError) {
	prefs := req.ToEntity()
	if err := prefs.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid preferences: "+err.Error(), err)
	}

	if err := s.prefsRepo.SavePreferences(ctx, userEmail, prefs); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to save preferences", err)
	}

	logger.Info("SchedulingService:UpdatePreferences:Success", "user_email", userEmail, "timezone", prefs.Timezone)
	return dto.ToPreferencesResponse(userEmail, prefs, true), nil
}

func (s *SchedulingService) EnqueueInboundEmail(ctx context.Context, userEmail string, req *dto.InboundEmailRequest) (*dto.InboundEmailResponse, *errors.AppError) {
	if appErr := validateEmail(req.EmailMessage); appErr != nil {
		return nil, appErr
	}
	if s.enqueuer == nil {
		return nil, errors.NewAppError(errors.ErrEnqueueFailed, "Background processing is disabled", nil)
	}
	if _, appErr := parseCalendar(req.CalendarICS); appErr != nil {
		return nil, appErr
	}

	taskID, err := s.enqueuer.Enqueue(ctx, constants.TaskEmailSuggestSlots, InboundEmailPayload{
		UserEmail:      userEmail,
		EmailMessage:   req.EmailMessage,
		CalendarEvents: req.CalendarEvents,
		CalendarICS:    req.CalendarICS,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrEnqueueFailed, "Failed to enqueue email", err)
	}
	return &dto.InboundEmailResponse{TaskID: taskID}, nil
}

func (s *SchedulingService) ListDrafts(ctx context.Context, userEmail string) ([]dto.DraftResponse, *errors.AppError) {
	drafts, err := s.draftRepo.ListDrafts(ctx, userEmail, 0)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list drafts", err)
	}

	result := make([]dto.DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		result = append(result, dto.ToDraftResponse(d))
	}
	return result, nil
}

// ProcessInboundEmail classifies, suggests and stores a reply draft.
// It returns nil, nil when the email is not a meeting proposal.
func (s *SchedulingService) ProcessInboundEmail(ctx context.Context, payload InboundEmailPayload) (*entity.DraftEmailMessage, *errors.AppError) {
	if strings.TrimSpace(payload.UserEmail) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "user_email is required", nil)
	}
	if appErr := validateEmail(payload.EmailMessage); appErr != nil {
		return nil, appErr
	}
	calendar, appErr := parseCalendar(payload.CalendarICS)
	if appErr != nil {
		return nil, appErr
	}

	if s.classifier != nil {
		isProposal, err := s.classifier.ContainsMeetingProposal(ctx, payload.EmailMessage)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrUpstreamFailed, "Failed to classify email", err)
		}
		if !isProposal {
			logger.Info("SchedulingService:ProcessInboundEmail:NotAProposal",
				"user_email", payload.UserEmail,
				"message_id", payload.EmailMessage.CacheKey(),
			)
			return nil, nil
		}
	}

	input := SuggestInput{
		Email:          payload.EmailMessage,
		CalendarEvents: payload.CalendarEvents,
		UserEmail:      payload.UserEmail,
	}
	if calendar != nil {
		input.Calendar = calendar
	}
	outcome := s.suggest(ctx, input)
	if outcome.Status == StatusExtractionFailed {
		return nil, errors.NewAppError(errors.ErrExtractionFailed, "Failed to extract meeting proposal", errors.New(outcome.Reason))
	}

	draft := BuildReplyDraft(payload.UserEmail, payload.EmailMessage, outcome.Slots, outcome.Location, s.now())
	if err := s.draftRepo.SaveDraft(ctx, draft); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to save draft", err)
	}

	logger.Info("SchedulingService:ProcessInboundEmail:DraftSaved",
		"user_email", payload.UserEmail,
		"draft_id", draft.ID,
		"slots", len(outcome.Slots),
		"status", outcome.Status,
	)
	return &draft, nil
}

// parseCalendar reads an inline iCalendar body. It returns nil when the body is blank.
func parseCalendar(calendarICS string) (*ics.Calendar, *errors.AppError) {
	if strings.TrimSpace(calendarICS) == "" {
		return nil, nil
	}
	cal, err := ics.ParseString(calendarICS)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid calendar_ics: "+err.Error(), err)
	}
	return cal, nil
}

func validateEmail(email entity.EmailMessage) *errors.AppError {
	if strings.TrimSpace(email.Subject) == "" && strings.TrimSpace(email.Body()) == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "email_message needs a subject or body", nil)
	}
	return nil
}
