package controller

import (
	"strings"

	"meeting-slot-api/core/constants"
	"meeting-slot-api/core/controller"
	"meeting-slot-api/core/errors"
	"meeting-slot-api/core/utils"
	"meeting-slot-api/modules/scheduling/dto"
	"meeting-slot-api/modules/scheduling/service"

	"github.com/labstack/echo/v4"
)

// SchedulingController handles slot suggestion HTTP requests
type SchedulingController struct {
	controller.BaseController
	SchedulingService service.SchedulingServiceInterface
}

// NewSchedulingController creates a new controller
func NewSchedulingController(svc service.SchedulingServiceInterface) *SchedulingController {
	return &SchedulingController{
		BaseController:    controller.NewBaseController(),
		SchedulingService: svc,
	}
}

// getUserEmailFromContext extracts the user's email from JWT context
func (c *SchedulingController) getUserEmailFromContext(ctx echo.Context) (string, *errors.AppError) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return "", errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok || strings.TrimSpace(claims.Email) == "" {
		return "", errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims.Email, nil
}

// SuggestSlots handles POST /slots/suggest
func (c *SchedulingController) SuggestSlots(ctx echo.Context) error {
	userEmail, appErr := c.getUserEmailFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	var req dto.SuggestSlotsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid request body", err))
	}

	result, appErr := c.SchedulingService.SuggestSlots(ctx.Request().Context(), userEmail, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Slots suggested successfully")
}

// GetPreferences handles GET /preferences
func (c *SchedulingController) GetPreferences(ctx echo.Context) error {
	userEmail, appErr := c.getUserEmailFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.SchedulingService.GetPreferences(ctx.Request().Context(), userEmail)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Preferences retrieved successfully")
}

// UpdatePreferences handles PUT /preferences
func (c *SchedulingController) UpdatePreferences(ctx echo.Context) error {
	userEmail, appErr := c.getUserEmailFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	var req dto.PreferencesRequest
	if err := ctx.Bind(&req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid request body", err))
	}

	result, appErr := c.SchedulingService.UpdatePreferences(ctx.Request().Context(), userEmail, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Preferences updated successfully")
}

// EnqueueInboundEmail handles POST /emails/inbound
func (c *SchedulingController) EnqueueInboundEmail(ctx echo.Context) error {
	userEmail, appErr := c.getUserEmailFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	var req dto.InboundEmailRequest
	if err := ctx.Bind(&req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid request body", err))
	}

	result, appErr := c.SchedulingService.EnqueueInboundEmail(ctx.Request().Context(), userEmail, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.AcceptedResponse(ctx, result, "Email queued for processing")
}

// ListDrafts handles GET /drafts
func (c *SchedulingController) ListDrafts(ctx echo.Context) error {
	userEmail, appErr := c.getUserEmailFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.SchedulingService.ListDrafts(ctx.Request().Context(), userEmail)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Drafts retrieved successfully")
}
