package dto

type LeaderboardUserResponse struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	CharacterName string `json:"character_name"`
	ImageID       int    `json:"image_id"`
	CurrentLevel  int    `json:"current_level"`
	CurrentStreak int    `json:"current_streak"`
	MaxStreak     int    `json:"max_streak"`
	TotalBrushes  int    `json:"total_brushes"`
}

type LeaderboardResponse struct {
	TopUsers    []LeaderboardUserResponse `json:"top_users"`
	CurrentUser *LeaderboardUserResponse  `json:"current_user,omitempty"`
}
