package models

import "encoding/json"

// Standing is the ranked part shared by every leaderboard entry.
type Standing struct {
	Rank       int `json:"rank"`
	Percentage int `json:"percentage"`
	Attempts   int `json:"attempts"`
	Correct    int `json:"correct"`
}

// LeaderboardEntry is either a *RealEntry or a *SyntheticEntry.
type LeaderboardEntry interface {
	Position() *Standing
	Synthetic() bool
}

// RealEntry is a ranked player.
type RealEntry struct {
	Standing
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsSelf   bool   `json:"is_self"`
}

func (e *RealEntry) Position() *Standing { return &e.Standing }
func (e *RealEntry) Synthetic() bool     { return false }

func (e RealEntry) MarshalJSON() ([]byte, error) {
	type plain RealEntry
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: "real", plain: plain(e)})
}

// SyntheticEntry is a placeholder row that pads short leaderboards.
type SyntheticEntry struct {
	Standing
	Name string `json:"name"`
}

func (e *SyntheticEntry) Position() *Standing { return &e.Standing }
func (e *SyntheticEntry) Synthetic() bool     { return true }

func (e SyntheticEntry) MarshalJSON() ([]byte, error) {
	type plain SyntheticEntry
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: "synthetic", plain: plain(e)})
}

type RankedList struct {
	Difficulty string             `json:"difficulty"`
	Category   string             `json:"category,omitempty"`
	Entries    []LeaderboardEntry `json:"entries"`
}

type Leaderboard struct {
	Overall    RankedList            `json:"overall"`
	Categories map[string]RankedList `json:"categories"`
}
