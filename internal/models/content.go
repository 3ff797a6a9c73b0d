package models

// Difficulty tiers.
const (
	DifficultyNormal = "normal"
	DifficultyExpert = "expert"
)

// Difficulties lists every tier in presentation order.
var Difficulties = []string{DifficultyNormal, DifficultyExpert}

// Categories is the fixed category order of a daily puzzle.
var Categories = []string{"news", "history", "science", "entertainment", "sports", "geography"}

// ValidDifficulty reports whether d names a known tier.
func ValidDifficulty(d string) bool {
	return d == DifficultyNormal || d == DifficultyExpert
}

// ContentItem is one trivia question from the content bank. Never mutated.
type ContentItem struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Prompt      string   `json:"prompt"`
	Answer      string   `json:"answer"`
	Options     []string `json:"options"`
	Difficulty  string   `json:"difficulty"`
}

type CategoryMeta struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Color         string   `json:"color"`
	Emoji         string   `json:"emoji"`
	Subcategories []string `json:"subcategories"`
}

// Resource is a learning resource from the catalog. An empty Subcategory
// marks a category-wide resource.
type Resource struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Kind        string `json:"kind"`
}
