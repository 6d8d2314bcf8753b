package shared

const (
	UserID         = "user_id"
	TokenID        = "token_id"
	TokenExpiresAt = "token_expires_at"

	DateLayout = "2006-01-02"
)
