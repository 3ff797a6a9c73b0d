package models

import "time"

// AnswerRecord is one immutable entry of the answer log.
type AnswerRecord struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Day           string    `json:"day"`
	Difficulty    string    `json:"difficulty"`
	Slot          int       `json:"slot"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory"`
	Question      string    `json:"question"`
	CorrectAnswer string    `json:"correct_answer"`
	UserAnswer    string    `json:"user_answer"`
	Correct       bool      `json:"correct"`
	LatencyMs     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnswerFilter narrows answer-log queries. Zero values mean "any".
type AnswerFilter struct {
	UserID            int64
	Day               string
	Difficulty        string
	Question          string
	ExcludeOnboarding bool
	OnlyOnboarding    bool
}

// RoundCompletion marks a finished (user, day, difficulty) round.
type RoundCompletion struct {
	UserID      int64     `json:"user_id"`
	Day         string    `json:"day"`
	Difficulty  string    `json:"difficulty"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// UserAccuracy is one user's aggregate for a tier, used by the eligibility population scan.
type UserAccuracy struct {
	UserID   int64 `json:"user_id"`
	Attempts int   `json:"attempts"`
	Correct  int   `json:"correct"`
}

type HistoryQuestion struct {
	Slot          int     `json:"slot"`
	Category      string  `json:"category"`
	CategoryName  string  `json:"category_name"`
	Color         string  `json:"color"`
	Question      string  `json:"question"`
	CorrectAnswer string  `json:"correct_answer"`
	UserAnswer    string  `json:"user_answer"`
	Correct       bool    `json:"correct"`
	LatencySec    float64 `json:"latency_sec"`
}

// CompletedRound groups a user's answers for one (day, difficulty).
type CompletedRound struct {
	Day        string            `json:"day"`
	Difficulty string            `json:"difficulty"`
	Score      int               `json:"score"`
	Total      int               `json:"total"`
	Complete   bool              `json:"complete"`
	Questions  []HistoryQuestion `json:"questions"`
}

type ShareText struct {
	Text  string `json:"share_text"`
	Score int    `json:"score"`
	Total int    `json:"total"`
}

// PopulationFilter selects per-user accuracy aggregates. Onboarding answers are never included.
type PopulationFilter struct {
	Difficulty  string
	Category    string
	UserIDs     []int64
	MinAttempts int
}

// AnswerSubmission is one answer sent by a player. An empty Day means today.
type AnswerSubmission struct {
	Day        string `json:"day"`
	Difficulty string `json:"difficulty"`
	Slot       int    `json:"slot"`
	Answer     string `json:"answer"`
	LatencyMs  int64  `json:"latency_ms"`
}

type AnswerResult struct {
	Correct                        bool   `json:"correct"`
	CorrectAnswer                  string `json:"correct_answer"`
	PercentCorrectAcrossAllPlayers int    `json:"percent_correct_across_all_players"`
	RoundComplete                  bool   `json:"round_complete"`
	Score                          int    `json:"score"`
}
