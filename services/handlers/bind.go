package handlers

import (
	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
)

// bindJSON parses the body into req and validates it. When it returns false
// the response has already been written or err is set.
func bindJSON(c *fiber.Ctx, req dto.Validator) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return false, c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	return true, nil
}
