package analytics

import (
	"sort"

	"github.com/vytor/uptriv/internal/models"
)

const (
	EligibilityMinAttempts   = 6
	EligibilityMinPopulation = 5
	FallbackThreshold        = 80
)

// Eligibility decides whether a player with acc at difficulty may move up a tier.
// population holds every user with at least EligibilityMinAttempts at that tier.
//
// With fewer than EligibilityMinPopulation such users the fixed FallbackThreshold
// applies. Otherwise the cutoff is the percentage at position ceil(0.2*n) of the
// population sorted best first, so roughly the top fifth qualifies.
func Eligibility(difficulty string, acc models.Accuracy, population []models.UserAccuracy) models.EligibilityResult {
	res := models.EligibilityResult{
		Difficulty:       difficulty,
		Percentage:       models.Percent(acc.Correct, acc.Total),
		Attempts:         acc.Total,
		RequiredAttempts: EligibilityMinAttempts,
		Population:       len(population),
	}

	pcts := make([]int, 0, len(population))
	for _, u := range population {
		pcts = append(pcts, models.Percent(u.Correct, u.Attempts))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(pcts)))

	if len(pcts) > 0 {
		atOrBelow := 0
		for _, p := range pcts {
			if p <= res.Percentage {
				atOrBelow++
			}
		}
		res.Percentile = models.Percent(atOrBelow, len(pcts))
	}

	if len(pcts) < EligibilityMinPopulation {
		res.Threshold = FallbackThreshold
		res.UsedFallback = true
	} else {
		// ceil(n/5) - 1 in integer arithmetic
		idx := (len(pcts)+4)/5 - 1
		res.Threshold = pcts[idx]
	}

	res.Eligible = acc.Total >= EligibilityMinAttempts && res.Percentage >= res.Threshold
	return res
}
