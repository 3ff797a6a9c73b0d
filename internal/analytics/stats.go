package analytics

import (
	"sort"
	"strings"

	"github.com/vytor/uptriv/internal/models"
)

const (
	// QualifiedAttempts is the number of attempts a subcategory needs before it
	// can be called a strength or a weakness.
	QualifiedAttempts = 3
	StrengthThreshold = 70
	WeaknessThreshold = 50
	highlightLimit    = 3
)

type tally struct {
	correct, total int
}

func (t *tally) add(correct bool) {
	t.total++
	if correct {
		t.correct++
	}
}

func (t tally) accuracy() models.Accuracy {
	return models.Accuracy{Correct: t.correct, Total: t.total, Percentage: models.Percent(t.correct, t.total)}
}

type subKey struct {
	category, subcategory string
}

// ComputeStats rolls the answer log up into per-tier, per-category and
// per-subcategory accuracy. Every fixed category is listed, at zero when
// unplayed. Onboarding answers are ignored.
func ComputeStats(records []models.AnswerRecord) models.Stats {
	var overall tally
	var latencyTotal int64
	tiers := make(map[string]*tally)
	categories := make(map[string]*tally, len(models.Categories))
	for _, c := range models.Categories {
		categories[c] = &tally{}
	}
	subs := make(map[subKey]*tally)
	rounds := make(map[string]bool)

	for _, r := range records {
		if r.Day == models.OnboardingDay {
			continue
		}
		overall.add(r.Correct)
		latencyTotal += r.LatencyMs
		rounds[r.Day+"|"+r.Difficulty] = true

		if tiers[r.Difficulty] == nil {
			tiers[r.Difficulty] = &tally{}
		}
		tiers[r.Difficulty].add(r.Correct)

		if categories[r.Category] == nil {
			categories[r.Category] = &tally{}
		}
		categories[r.Category].add(r.Correct)

		k := subKey{r.Category, r.Subcategory}
		if subs[k] == nil {
			subs[k] = &tally{}
		}
		subs[k].add(r.Correct)
	}

	stats := models.Stats{
		TotalQuestions:    overall.total,
		RoundsPlayed:      len(rounds),
		OverallPercentage: models.Percent(overall.correct, overall.total),
		Tiers:             make(map[string]models.Accuracy, len(tiers)),
		Categories:        make(map[string]models.CategoryStat, len(categories)),
		Subcategories:     make([]models.SubcategoryStat, 0, len(subs)),
		Strengths:         []models.Highlight{},
		Weaknesses:        []models.Highlight{},
	}
	if overall.total > 0 {
		stats.AvgLatencyMs = float64(latencyTotal) / float64(overall.total)
	}
	for d, t := range tiers {
		stats.Tiers[d] = t.accuracy()
	}
	for c, t := range categories {
		stats.Categories[c] = models.CategoryStat{Category: c, Accuracy: t.accuracy()}
	}
	for k, t := range subs {
		stats.Subcategories = append(stats.Subcategories, models.SubcategoryStat{
			Category:    k.category,
			Subcategory: k.subcategory,
			Accuracy:    t.accuracy(),
		})
	}
	sort.Slice(stats.Subcategories, func(i, j int) bool {
		a, b := stats.Subcategories[i], stats.Subcategories[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subcategory < b.Subcategory
	})

	stats.Strengths, stats.Weaknesses = classify(stats.Subcategories)
	return stats
}

// Qualified returns the subcategories with enough attempts to classify.
func Qualified(subs []models.SubcategoryStat) []models.SubcategoryStat {
	var out []models.SubcategoryStat
	for _, s := range subs {
		if s.Total >= QualifiedAttempts {
			out = append(out, s)
		}
	}
	return out
}

// byPercentage orders subcategories by percentage (descending when desc),
// then by attempts descending, then by name for a stable result.
func byPercentage(subs []models.SubcategoryStat, desc bool) {
	sort.SliceStable(subs, func(i, j int) bool {
		a, b := subs[i], subs[j]
		if a.Percentage != b.Percentage {
			if desc {
				return a.Percentage > b.Percentage
			}
			return a.Percentage < b.Percentage
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subcategory < b.Subcategory
	})
}

func classify(subs []models.SubcategoryStat) (strengths, weaknesses []models.Highlight) {
	strengths, weaknesses = []models.Highlight{}, []models.Highlight{}
	qualified := Qualified(subs)

	top := append([]models.SubcategoryStat(nil), qualified...)
	byPercentage(top, true)
	for i := 0; i < len(top) && i < highlightLimit; i++ {
		if top[i].Percentage >= StrengthThreshold {
			strengths = append(strengths, highlight(top[i]))
		}
	}

	bottom := append([]models.SubcategoryStat(nil), qualified...)
	byPercentage(bottom, false)
	for i := 0; i < len(bottom) && i < highlightLimit; i++ {
		if bottom[i].Percentage < WeaknessThreshold {
			weaknesses = append(weaknesses, highlight(bottom[i]))
		}
	}
	return strengths, weaknesses
}

func highlight(s models.SubcategoryStat) models.Highlight {
	return models.Highlight{
		Name:        DisplayName(s.Subcategory),
		Category:    s.Category,
		Subcategory: s.Subcategory,
		Percentage:  s.Percentage,
	}
}

// DisplayName turns a subcategory key like "music_pre1990" into "Music Pre1990".
func DisplayName(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
