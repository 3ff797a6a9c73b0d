package models

import "math"

// Percent returns correct/total*100 rounded half to even, or 0 when total
// is 0. 5/8 is 62, not 63.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(correct) / float64(total) * 100))
}

// Accuracy is a correct/total tally with its rounded percentage.
type Accuracy struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type CategoryStat struct {
	Category string `json:"category"`
	Accuracy
}

type SubcategoryStat struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Accuracy
}

// Highlight is a strength or weakness entry.
type Highlight struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Percentage  int    `json:"percentage"`
}

type Stats struct {
	TotalQuestions    int                     `json:"total_questions"`
	RoundsPlayed      int                     `json:"rounds_played"`
	OverallPercentage int                     `json:"overall_percentage"`
	Tiers             map[string]Accuracy     `json:"tiers"`
	Categories        map[string]CategoryStat `json:"categories"`
	Subcategories     []SubcategoryStat       `json:"subcategories"`
	Strengths         []Highlight             `json:"strengths"`
	Weaknesses        []Highlight             `json:"weaknesses"`
	AvgLatencyMs      float64                 `json:"avg_latency_ms"`
}

type Recommendation struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Reason      string `json:"reason"`
	Percentage  int    `json:"percentage"`
}

// RecommendationList holds resources for weak areas and for areas the user enjoys.
type RecommendationList struct {
	Weakness []Recommendation `json:"weakness"`
	Interest []Recommendation `json:"interest"`
}

type EligibilityResult struct {
	Eligible         bool   `json:"eligible"`
	Difficulty       string `json:"difficulty"`
	Percentage       int    `json:"percentage"`
	Percentile       int    `json:"percentile"`
	Threshold        int    `json:"threshold"`
	Attempts         int    `json:"attempts"`
	RequiredAttempts int    `json:"required_attempts"`
	Population       int    `json:"population"`
	UsedFallback     bool   `json:"used_fallback"`
}
