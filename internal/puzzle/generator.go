package puzzle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/vytor/uptriv/internal/models"
)

// ErrEmptyPool is returned when a category has no questions for the requested tier.
var ErrEmptyPool = errors.New("puzzle: empty category pool")

// Source returns the PRNG for key. The same key always yields the same sequence.
func Source(day, difficulty string) *rand.Rand {
	sum := sha256.Sum256([]byte(day + "|" + difficulty))
	return rand.New(rand.NewPCG(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])))
}

// Generate builds the puzzle for (day, difficulty): one item per category,
// preferring prompts not in history, in a seeded order. It is a pure function
// of its arguments and never modifies pools.
func Generate(day, difficulty string, pools map[string][]models.ContentItem, history map[string]bool) (models.DailyPuzzle, error) {
	rng := Source(day, difficulty)

	items := make([]models.ContentItem, 0, len(models.Categories))
	for _, category := range models.Categories {
		pool := append([]models.ContentItem(nil), pools[category]...)
		if len(pool) == 0 {
			return models.DailyPuzzle{}, fmt.Errorf("%w: %s/%s", ErrEmptyPool, difficulty, category)
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		pick := pool[0]
		for _, item := range pool {
			if !history[item.Prompt] {
				pick = item
				break
			}
		}
		items = append(items, pick)
	}
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	return models.DailyPuzzle{Day: day, Difficulty: difficulty, Items: items}, nil
}

// Encode serializes puzzle items the way cache rows and the memo store them.
func Encode(p models.DailyPuzzle) (string, error) {
	b, err := json.Marshal(p.Items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode rebuilds a puzzle from stored content.
func Decode(day, difficulty, content string) (*models.DailyPuzzle, error) {
	var items []models.ContentItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("decode puzzle %s/%s: %w", day, difficulty, err)
	}
	return &models.DailyPuzzle{Day: day, Difficulty: difficulty, Items: items}, nil
}

// HistoryFromContents collects every prompt that appears in the stored puzzles.
// Unreadable rows are skipped.
func HistoryFromContents(contents []string) map[string]bool {
	history := make(map[string]bool)
	for _, c := range contents {
		var items []models.ContentItem
		if err := json.Unmarshal([]byte(c), &items); err != nil {
			continue
		}
		for _, it := range items {
			history[it.Prompt] = true
		}
	}
	return history
}
