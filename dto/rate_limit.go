package dto

import "time"

// RateLimitInfo is the outcome of one rate limit check.
type RateLimitInfo struct {
	Allowed      bool       `json:"allowed"`
	Remaining    int        `json:"remaining"`
	ResetTime    *time.Time `json:"reset_time,omitempty"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// RetryAfter is the whole number of seconds until a block lifts, 0 when
// the caller is not blocked.
func (i *RateLimitInfo) RetryAfter(now time.Time) int {
	if i == nil || i.BlockedUntil == nil {
		return 0
	}
	return max(int(i.BlockedUntil.Sub(now).Seconds()), 0)
}

type RateLimitExceededResponse struct {
	Error        string `json:"error" example:"Rate limit exceeded"`
	BlockedUntil int64  `json:"blocked_until,omitempty" example:"1709294400"`
	RetryAfter   int    `json:"retry_after,omitempty" example:"900"`
}
