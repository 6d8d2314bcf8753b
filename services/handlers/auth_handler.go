package handlers

import (
	"net/http"
	"time"

	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
	}
}

// @Summary Sign up
// @Description Create a parent account together with an empty brushing progress record
// @Tags auth
// @Accept json
// @Produce json
// @Param signupRequest body dto.SignupRequest true "Account details"
// @Success 200 {object} shared.Response{data=dto.UserProfileResponse}
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 409 {object} shared.Response
// @Failure 429 {object} shared.Response
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	resp, err := h.authSvc.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "User registered successfully", resp)
}

// @Summary Sign in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param signinRequest body dto.SigninRequest true "Credentials"
// @Success 200 {object} shared.Response{data=dto.SigninResponse}
// @Failure 401 {object} shared.Response
// @Failure 429 {object} shared.Response
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	resp, err := h.authSvc.Signin(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}

// @Summary Current user
// @Description Return the signed-in user together with their progress
// @Tags auth
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.AuthenticatedResponse}
// @Failure 401 {object} shared.Response
// @Router /api/v1/auth/authenticated [get]
func (h *AuthHandler) Authenticated(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.authSvc.Authenticated(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Sign out
// @Description Revoke the bearer token used for this request
// @Tags auth
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response
// @Router /api/v1/auth/signout [post]
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	tokenID, _ := c.Locals(shared.TokenID).(string)
	expiresAt, _ := c.Locals(shared.TokenExpiresAt).(time.Time)

	if err := h.authSvc.Signout(c.UserContext(), tokenID, expiresAt); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Logged out successfully", nil)
}
