package handlers

import (
	"net/http"

	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{
		progressSvc: progressSvc,
	}
}

// @Summary Get progress
// @Description Streaks, totals, level and character of the signed-in user
// @Tags progress
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	progress, err := h.progressSvc.GetProgress(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", progress)
}

// @Summary Record a brushing
// @Description Counts the day, records the morning or evening session and adds brushing time in one step
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param brushRequest body dto.BrushRequest false "Brushing time in seconds"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Failure 409 {object} shared.Response
// @Router /api/v1/progress/brush [post]
func (h *ProgressHandler) RecordBrush(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.BrushRequest
	if len(c.Body()) > 0 {
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
	}

	resp, err := h.progressSvc.RecordBrush(c.UserContext(), userID, req.AddedTime)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Brushing recorded", resp)
}

// @Summary Record daily activity
// @Description Counts today towards the overall streak
// @Tags progress
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.StreakResponse}
// @Router /api/v1/progress/streak [post]
func (h *ProgressHandler) RecordOverallActivity(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.RecordOverallActivity(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Record session activity
// @Description Records the morning or evening session for the current local time
// @Tags progress
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Failure 409 {object} shared.Response
// @Router /api/v1/progress/session [post]
func (h *ProgressHandler) RecordSessionActivity(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.RecordSessionActivity(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Add brushing time
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param brushTimeRequest body dto.BrushTimeRequest true "Seconds to add"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/brush-time [post]
func (h *ProgressHandler) AddBrushTime(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.BrushTimeRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	progress, err := h.progressSvc.AddBrushTime(c.UserContext(), userID, *req.AddedTime)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", progress)
}

// @Summary Change level
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateLevelRequest body dto.UpdateLevelRequest true "Level delta"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/level [post]
func (h *ProgressHandler) UpdateLevel(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateLevelRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	progress, err := h.progressSvc.UpdateLevel(c.UserContext(), userID, *req.UpdateLevelBy)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", progress)
}

// @Summary Set level XP
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateXPRequest body dto.UpdateXPRequest true "Current and maximum XP"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/xp [put]
func (h *ProgressHandler) SetLevelXP(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateXPRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	progress, err := h.progressSvc.SetLevelXP(c.UserContext(), userID, *req.CurrentLevelXP, *req.CurrentLevelMaxXP)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", progress)
}

// @Summary Set character image
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateImageRequest body dto.UpdateImageRequest true "Image ID"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/image [put]
func (h *ProgressHandler) SetImage(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateImageRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	progress, err := h.progressSvc.SetImage(c.UserContext(), userID, req.ImageID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", progress)
}

// @Summary Set character name
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateCharacterNameRequest body dto.UpdateCharacterNameRequest true "Character name"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/character [put]
func (h *ProgressHandler) SetCharacterName(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateCharacterNameRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	progress, err := h.progressSvc.SetCharacterName(c.UserContext(), userID, req.CharacterName)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", progress)
}

// @Summary Set parent PIN
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param parentPinRequest body dto.ParentPinRequest true "Six digit PIN"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/pin [post]
func (h *ProgressHandler) SetParentPin(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.ParentPinRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	progress, err := h.progressSvc.SetParentPin(c.UserContext(), userID, req.Pin)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Parent PIN updated", progress)
}

// @Summary Check parent PIN
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param parentPinRequest body dto.ParentPinRequest true "Candidate PIN"
// @Success 200 {object} shared.Response{data=dto.PinCheckResponse}
// @Failure 429 {object} shared.Response
// @Router /api/v1/progress/pin/check [post]
func (h *ProgressHandler) CheckParentPin(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.ParentPinRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	resp, err := h.progressSvc.CheckParentPin(c.UserContext(), userID, req.Pin)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Brushing calendar
// @Description One entry per active day with the sessions brushed on it
// @Tags progress
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} shared.Response{data=dto.ActivitySummaryResponse}
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/v1/progress/activities [get]
func (h *ProgressHandler) GetActivitySummary(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var query dto.ActivityRangeQuery
	if err := c.QueryParser(&query); err != nil {
		return shared.NewBadRequestError(err, "Invalid query parameters")
	}

	if err := query.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	summary, err := h.progressSvc.GetActivitySummary(c.UserContext(), userID, query)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", summary)
}
