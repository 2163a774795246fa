package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"meeting-slot-api/core/errors"
	"meeting-slot-api/core/logger"
	"meeting-slot-api/core/metrics"
	"meeting-slot-api/modules/scheduling/service"

	"github.com/hibiken/asynq"
)

// EmailTaskHandler processes email:suggest_slots tasks.
type EmailTaskHandler struct {
	svc     service.SchedulingServiceInterface
	metrics *metrics.Metrics
}

func NewEmailTaskHandler(svc service.SchedulingServiceInterface, m *metrics.Metrics) *EmailTaskHandler {
	return &EmailTaskHandler{svc: svc, metrics: m}
}

func (h *EmailTaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload service.InboundEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.metrics.ObserveTask("bad_payload")
		logger.Error("EmailTaskHandler:ProcessTask:Decode", "error", err)
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	draft, appErr := h.svc.ProcessInboundEmail(ctx, payload)
	if appErr != nil {
		switch appErr.Code {
		case errors.ErrInvalidInput:
			h.metrics.ObserveTask("bad_payload")
			return fmt.Errorf("%w: %w", appErr, asynq.SkipRetry)
		case errors.ErrExtractionFailed:
			// extraction is not retried
			h.metrics.ObserveTask("extraction_failed")
			return fmt.Errorf("%w: %w", appErr, asynq.SkipRetry)
		default:
			h.metrics.ObserveTask("error")
			return appErr
		}
	}

	if draft == nil {
		h.metrics.ObserveTask("not_a_proposal")
		return nil
	}
	h.metrics.ObserveTask("draft_saved")
	logger.Info("EmailTaskHandler:ProcessTask:Success", "draft_id", draft.ID, "user_email", payload.UserEmail)
	return nil
}
