package models

import "time"

type User struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	Anonymous          bool      `json:"anonymous"`
	DeviceToken        string    `json:"-"`
	Difficulty         string    `json:"difficulty"`
	OnboardingProgress int       `json:"onboarding_progress"`
	CreatedAt          time.Time `json:"created_at"`
}

// OnboardingComplete reports whether the placement quiz is done.
func (u User) OnboardingComplete() bool {
	return u.OnboardingProgress >= PuzzleSize
}

// Friend is an accepted friendship seen from one side.
type Friend struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
