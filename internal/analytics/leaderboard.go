package analytics

import (
	"sort"

	"github.com/vytor/uptriv/internal/models"
)

// LeaderboardSize is the length short boards are padded to.
const LeaderboardSize = 10

// Player is one real participant of a leaderboard.
type Player struct {
	UserID   int64
	Username string
	IsSelf   bool
	Attempts int
	Correct  int
}

var syntheticPlayers = []struct {
	name       string
	percentage int
	attempts   int
}{
	{"Quiz Whiz", 88, 42},
	{"Trivia Titan", 81, 36},
	{"Fact Finder", 76, 54},
	{"Brain Box", 72, 30},
	{"Know-It-All", 68, 48},
	{"Curious Cat", 63, 24},
	{"Puzzle Pro", 58, 18},
	{"Smarty Pants", 52, 12},
	{"Deep Thinker", 45, 6},
}

// Rank orders self and the friends who played the tier, then pads the list
// with synthetic entries up to LeaderboardSize. Self is always listed, even
// with no attempts, so a player sees where they stand before playing the tier.
// Friends with no attempts are left out.
func Rank(self Player, friends []Player, difficulty, category string) models.RankedList {
	self.IsSelf = true
	entries := []models.LeaderboardEntry{realEntry(self)}
	for _, f := range friends {
		if f.Attempts == 0 || f.UserID == self.UserID {
			continue
		}
		f.IsSelf = false
		entries = append(entries, realEntry(f))
	}

	for i := 0; len(entries) < LeaderboardSize && i < len(syntheticPlayers); i++ {
		sp := syntheticPlayers[i]
		entries = append(entries, &models.SyntheticEntry{
			Standing: models.Standing{
				Percentage: sp.percentage,
				Attempts:   sp.attempts,
				Correct:    (sp.percentage*sp.attempts + 50) / 100,
			},
			Name: sp.name,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Position(), entries[j].Position()
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		if a.Attempts != b.Attempts {
			return a.Attempts > b.Attempts
		}
		return !entries[i].Synthetic() && entries[j].Synthetic()
	})
	for i, e := range entries {
		e.Position().Rank = i + 1
	}

	return models.RankedList{Difficulty: difficulty, Category: category, Entries: entries}
}

func realEntry(p Player) *models.RealEntry {
	return &models.RealEntry{
		Standing: models.Standing{
			Percentage: models.Percent(p.Correct, p.Attempts),
			Attempts:   p.Attempts,
			Correct:    p.Correct,
		},
		UserID:   p.UserID,
		Username: p.Username,
		IsSelf:   p.IsSelf,
	}
}
