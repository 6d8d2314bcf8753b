package handlers

import (
	"net/http"

	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userSvc UserServiceInterface
}

func NewUserHandler(userSvc UserServiceInterface) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

// @Summary Get user profile
// @Description Get user profile
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.UserProfileResponse}
// @Router /api/v1/user/profile [get]
func (h *UserHandler) GetUserProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	profile, err := h.userSvc.GetUserProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", profile)
}

// @Summary Update user profile
// @Description Update user profile
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateRequest body dto.UpdateProfileRequest true "User profile"
// @Success 200 {object} shared.Response{data=dto.UserProfileResponse}
// @Router /api/v1/user/profile [put]
func (h *UserHandler) UpdateUserProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateProfileRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	profile, err := h.userSvc.UpdateUserProfile(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", profile)
}

// @Summary Upload profile thumbnail
// @Description Upload a JPG, PNG or WEBP image of at most 2MB
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param file formData file true "Thumbnail file (JPG, PNG, WEBP)"
// @Success 200 {object} shared.Response{data=dto.ThumbnailResponse}
// @Router /api/v1/user/thumbnail [post]
func (h *UserHandler) UploadThumbnail(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	file, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "No thumbnail file provided")
	}

	resp, err := h.userSvc.UploadThumbnail(c.UserContext(), userID, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Thumbnail uploaded successfully", resp)
}

// @Summary Delete account
// @Description Delete the account together with its progress and brushing history
// @Tags user
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response
// @Router /api/v1/user [delete]
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	if err := h.userSvc.DeleteAccount(c.UserContext(), userID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Account deleted", nil)
}
