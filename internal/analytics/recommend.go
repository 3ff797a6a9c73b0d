package analytics

import (
	"fmt"
	"sort"

	"github.com/vytor/uptriv/internal/models"
)

const (
	perSubcategoryLimit = 2
	recommendationMin   = 4
	recommendationMax   = 6
	backfillCategories  = 3
)

// Catalog is the resource side of the content store.
type Catalog interface {
	Resources(category, subcategory string) []models.Resource
}

// Recommend builds the weakness and interest lists. A title appears at most once
// across both lists and never when it is in dismissed.
func Recommend(stats models.Stats, catalog Catalog, dismissed map[string]bool) models.RecommendationList {
	used := make(map[string]bool, len(dismissed))
	for t := range dismissed {
		used[t] = true
	}

	qualified := Qualified(stats.Subcategories)

	weak := append([]models.SubcategoryStat(nil), qualified...)
	byPercentage(weak, false)
	weakness := pick(catalog, used, weak, func(s models.SubcategoryStat) bool { return s.Percentage < WeaknessThreshold }, "Needs work")
	if len(weakness) < recommendationMin {
		weakness = backfill(catalog, used, weakness, playedCategories(stats, false), "Brush up on")
	}

	strong := append([]models.SubcategoryStat(nil), qualified...)
	byPercentage(strong, true)
	interest := pick(catalog, used, strong, func(s models.SubcategoryStat) bool { return s.Percentage >= StrengthThreshold }, "You're great at")
	if len(interest) < recommendationMin {
		interest = backfill(catalog, used, interest, playedCategories(stats, true), "More of what you enjoy in")
	}

	return models.RecommendationList{Weakness: weakness, Interest: interest}
}

func pick(catalog Catalog, used map[string]bool, subs []models.SubcategoryStat, keep func(models.SubcategoryStat) bool, reason string) []models.Recommendation {
	out := []models.Recommendation{}
	for _, s := range subs {
		if !keep(s) {
			continue
		}
		taken := 0
		for _, r := range catalog.Resources(s.Category, s.Subcategory) {
			if len(out) >= recommendationMax {
				return out
			}
			if taken >= perSubcategoryLimit || used[r.Title] {
				continue
			}
			used[r.Title] = true
			taken++
			out = append(out, recommendation(r, fmt.Sprintf("%s %s (%d%%)", reason, DisplayName(s.Subcategory), s.Percentage), s.Percentage))
		}
	}
	return out
}

func backfill(catalog Catalog, used map[string]bool, out []models.Recommendation, categories []models.CategoryStat, reason string) []models.Recommendation {
	for _, c := range categories {
		taken := 0
		for _, r := range catalog.Resources(c.Category, "") {
			if len(out) >= recommendationMin {
				return out
			}
			if taken >= perSubcategoryLimit || used[r.Title] {
				continue
			}
			used[r.Title] = true
			taken++
			out = append(out, recommendation(r, fmt.Sprintf("%s %s (%d%%)", reason, DisplayName(c.Category), c.Percentage), c.Percentage))
		}
	}
	return out
}

// playedCategories returns up to three categories with at least one attempt,
// lowest percentage first (highest first when desc).
func playedCategories(stats models.Stats, desc bool) []models.CategoryStat {
	var cats []models.CategoryStat
	for _, c := range stats.Categories {
		if c.Total > 0 {
			cats = append(cats, c)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		a, b := cats[i], cats[j]
		if a.Percentage != b.Percentage {
			if desc {
				return a.Percentage > b.Percentage
			}
			return a.Percentage < b.Percentage
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Category < b.Category
	})
	if len(cats) > backfillCategories {
		cats = cats[:backfillCategories]
	}
	return cats
}

func recommendation(r models.Resource, reason string, pct int) models.Recommendation {
	return models.Recommendation{
		Title:       r.Title,
		URL:         r.URL,
		Kind:        r.Kind,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Reason:      reason,
		Percentage:  pct,
	}
}
