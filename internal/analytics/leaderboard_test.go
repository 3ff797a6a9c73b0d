package analytics_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/uptriv/internal/analytics"
	"github.com/vytor/uptriv/internal/models"
)

func realOnly(list models.RankedList) []*models.RealEntry {
	var out []*models.RealEntry
	for _, e := range list.Entries {
		if r, ok := e.(*models.RealEntry); ok {
			out = append(out, r)
		}
	}
	return out
}

func TestRank_TieBreakByAttempts(t *testing.T) {
	self := analytics.Player{UserID: 1, Username: "me", Attempts: 10, Correct: 9} // 90
	friends := []analytics.Player{
		{UserID: 2, Username: "few", Attempts: 10, Correct: 9},   // 90, same attempts
		{UserID: 3, Username: "many", Attempts: 20, Correct: 18}, // 90, more attempts
		{UserID: 4, Username: "idle"},                            // never played
	}

	list := analytics.Rank(self, friends, models.DifficultyNormal, "")
	require.Len(t, list.Entries, analytics.LeaderboardSize)

	reals := realOnly(list)
	require.Len(t, reals, 3)
	assert.Equal(t, "many", reals[0].Username)
	assert.Equal(t, "me", reals[1].Username)
	assert.True(t, reals[1].IsSelf)
	assert.Equal(t, "few", reals[2].Username)
	assert.Equal(t, []int{1, 2, 3}, []int{reals[0].Rank, reals[1].Rank, reals[2].Rank})
}

func TestRank_SelfListedBeforePlaying(t *testing.T) {
	friends := []analytics.Player{{UserID: 2, Username: "idle"}}
	list := analytics.Rank(analytics.Player{UserID: 1, Username: "me"}, friends, models.DifficultyExpert, "")

	require.Len(t, list.Entries, analytics.LeaderboardSize)
	reals := realOnly(list)
	require.Len(t, reals, 1)
	assert.Equal(t, "me", reals[0].Username)
	assert.True(t, reals[0].IsSelf)
	assert.Equal(t, 0, reals[0].Percentage)
	assert.Equal(t, analytics.LeaderboardSize, reals[0].Rank)
}

func TestRank_RanksAreDenseAndOrdered(t *testing.T) {
	list := analytics.Rank(analytics.Player{UserID: 1, Username: "me", Attempts: 6, Correct: 4}, nil, models.DifficultyExpert, "")

	require.Len(t, list.Entries, analytics.LeaderboardSize)
	for i, e := range list.Entries {
		assert.Equal(t, i+1, e.Position().Rank)
		if i > 0 {
			prev := list.Entries[i-1].Position()
			assert.GreaterOrEqual(t, prev.Percentage, e.Position().Percentage)
		}
	}
	assert.Equal(t, models.DifficultyExpert, list.Difficulty)
}

func TestRank_SyntheticNeverOutranksHigherReal(t *testing.T) {
	self := analytics.Player{UserID: 1, Username: "me", Attempts: 10, Correct: 10} // 100
	list := analytics.Rank(self, nil, models.DifficultyNormal, "")

	first, ok := list.Entries[0].(*models.RealEntry)
	require.True(t, ok)
	assert.Equal(t, 1, first.Rank)

	for _, e := range list.Entries[1:] {
		assert.True(t, e.Synthetic())
	}
}

func TestRank_RealBeforeSyntheticOnFullTie(t *testing.T) {
	// Ties the "Quiz Whiz" placeholder exactly: 88% over 42 attempts.
	self := analytics.Player{UserID: 1, Username: "me", Attempts: 42, Correct: 37}
	list := analytics.Rank(self, nil, models.DifficultyNormal, "")

	assert.False(t, list.Entries[0].Synthetic())
	assert.True(t, list.Entries[1].Synthetic())
	assert.Equal(t, 88, list.Entries[1].Position().Percentage)
}

func TestRank_NoPaddingWhenFull(t *testing.T) {
	var friends []analytics.Player
	for i := 0; i < 12; i++ {
		friends = append(friends, analytics.Player{UserID: int64(i + 2), Username: "f", Attempts: 6, Correct: i % 6})
	}
	list := analytics.Rank(analytics.Player{UserID: 1, Username: "me"}, friends, models.DifficultyNormal, "history")

	assert.Len(t, list.Entries, 13)
	for _, e := range list.Entries {
		assert.False(t, e.Synthetic())
	}
	assert.Equal(t, "history", list.Category)
}

func TestRank_JSONDiscriminator(t *testing.T) {
	list := analytics.Rank(analytics.Player{UserID: 1, Username: "me", Attempts: 1, Correct: 1}, nil, models.DifficultyNormal, "")

	raw, err := json.Marshal(list)
	require.NoError(t, err)

	var decoded struct {
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Entries, analytics.LeaderboardSize)
	assert.Equal(t, "real", decoded.Entries[0]["kind"])
	assert.Equal(t, "me", decoded.Entries[0]["username"])
	assert.Equal(t, "synthetic", decoded.Entries[1]["kind"])
	assert.Contains(t, decoded.Entries[1], "name")
	assert.EqualValues(t, 2, decoded.Entries[1]["rank"])
}
