package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/uptriv/internal/db"
	"github.com/vytor/uptriv/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// CreateUser inserts a user row and returns its id.
func CreateUser(t *testing.T, sqlDB *sql.DB, username, difficulty string) int64 {
	if difficulty == "" {
		difficulty = models.DifficultyNormal
	}
	res, err := sqlDB.Exec(`INSERT INTO users (username, anonymous, difficulty) VALUES (?, 0, ?)`, username, difficulty)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Answers builds n answer records for userID where the first correct ones are right.
// Each record lands on its own day so the unique slot constraint never trips.
func Answers(userID int64, difficulty, category string, n, correct int) []models.AnswerRecord {
	out := make([]models.AnswerRecord, n)
	for i := range out {
		out[i] = models.AnswerRecord{
			UserID:        userID,
			Day:           DayN(i),
			Difficulty:    difficulty,
			Slot:          0,
			Category:      category,
			Subcategory:   "general",
			Question:      "q",
			CorrectAnswer: "a",
			UserAnswer:    "a",
			Correct:       i < correct,
			LatencyMs:     1000,
		}
		if !out[i].Correct {
			out[i].UserAnswer = "b"
		}
	}
	return out
}

// DayN returns the ISO day n days after 2024-01-01.
func DayN(n int) string {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n).Format(models.DayLayout)
}
