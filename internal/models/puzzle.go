package models

import "time"

// DayLayout is the calendar-day format used for puzzle and answer keys.
const DayLayout = "2006-01-02"

// OnboardingDay is the answer-log namespace of the one-time placement quiz.
const OnboardingDay = "onboarding"

// PuzzleSize is the number of slots in a daily puzzle, one per category.
const PuzzleSize = 6

// DayOf returns the puzzle day containing t in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

type DailyPuzzle struct {
	Day        string        `json:"day"`
	Difficulty string        `json:"difficulty"`
	Items      []ContentItem `json:"items"`
}

// Prompts returns the prompt text of every item.
func (p DailyPuzzle) Prompts() []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Prompt
	}
	return out
}

// PuzzleCacheRow is the per-(day, user) pointer to a puzzle. Content holds the
// serialized items exactly as first written for the (day, difficulty) key.
type PuzzleCacheRow struct {
	ID         int64     `json:"id"`
	Day        string    `json:"day"`
	UserID     int64     `json:"user_id"`
	Difficulty string    `json:"difficulty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// RoundItem is a puzzle slot as shown to a player; the answer stays server side.
type RoundItem struct {
	Slot         int      `json:"slot"`
	Category     string   `json:"category"`
	CategoryName string   `json:"category_name"`
	Color        string   `json:"color"`
	Emoji        string   `json:"emoji"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
}

// Round is a started (possibly partially answered) daily or onboarding round.
type Round struct {
	Day        string      `json:"day"`
	Difficulty string      `json:"difficulty"`
	Items      []RoundItem `json:"items"`
	Answered   []int       `json:"answered"`
	Score      int         `json:"score"`
	Complete   bool        `json:"complete"`
}
