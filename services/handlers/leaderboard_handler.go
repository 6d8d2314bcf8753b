package handlers

import (
	"strconv"

	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

type LeaderboardHandler struct {
	userSvc UserServiceInterface
}

func NewLeaderboardHandler(userSvc UserServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{
		userSvc: userSvc,
	}
}

// @Summary Get Leaderboard
// @Description Users ranked by their longest brushing streak. The caller's own rank is included when a token is sent.
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param Authorization header string false "User Bearer Token"
// @Param limit query int false "Limit results (default 50, max 100)"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit := defaultLeaderboardLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLeaderboardLimit {
			limit = parsed
		}
	}

	userID, _ := c.Locals(shared.UserID).(string)

	leaderboard, err := h.userSvc.GetLeaderboard(c.UserContext(), limit, userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", leaderboard)
}
