package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

type answerRepository struct {
	db *sql.DB
}

// NewAnswerRepository creates a new AnswerRepository implementation
func NewAnswerRepository(db *sql.DB) repository.AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Record(ctx context.Context, rec models.AnswerRecord, roundSize int) (*models.RoundCompletion, error) {
	log := logger.FromContext(ctx).WithPrefix("answer_repo")
	log.Debug("recording answer: user_id=%d, day=%s, difficulty=%s, slot=%d", rec.UserID, rec.Day, rec.Difficulty, rec.Slot)

	var completion *models.RoundCompletion
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO answers (
    user_id, day, difficulty, slot, category, subcategory, question,
    correct_answer, user_answer, correct, latency_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.UserID, rec.Day, rec.Difficulty, rec.Slot, rec.Category, rec.Subcategory, rec.Question,
			rec.CorrectAnswer, rec.UserAnswer, boolToInt(rec.Correct), rec.LatencyMs)
		if err != nil {
			return conflict(err)
		}
		if roundSize <= 0 {
			return nil
		}

		var answered, score int
		err = tx.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(correct), 0)
FROM answers
WHERE user_id = ? AND day = ? AND difficulty = ?
`, rec.UserID, rec.Day, rec.Difficulty).Scan(&answered, &score)
		if err != nil {
			return err
		}
		if answered < roundSize {
			return nil
		}

		c := models.RoundCompletion{
			UserID:      rec.UserID,
			Day:         rec.Day,
			Difficulty:  rec.Difficulty,
			Score:       score,
			CompletedAt: time.Now().UTC(),
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO round_completions (user_id, day, difficulty, score, completed_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, day, difficulty) DO NOTHING
`, c.UserID, c.Day, c.Difficulty, c.Score, c.CompletedAt); err != nil {
			return err
		}
		completion = &c
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Debug("answer already recorded: user_id=%d, day=%s, slot=%d", rec.UserID, rec.Day, rec.Slot)
		} else {
			log.Error("failed to record answer: %v", err)
		}
		return nil, err
	}
	if completion != nil {
		log.Info("round completed: user_id=%d, day=%s, difficulty=%s, score=%d", rec.UserID, rec.Day, rec.Difficulty, completion.Score)
	}
	return completion, nil
}

func applyAnswerFilter(query squirrel.SelectBuilder, filter models.AnswerFilter) squirrel.SelectBuilder {
	if filter.UserID != 0 {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Day != "" {
		query = query.Where(squirrel.Eq{"day": filter.Day})
	}
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": filter.Difficulty})
	}
	if filter.Question != "" {
		query = query.Where(squirrel.Eq{"question": filter.Question})
	}
	if filter.ExcludeOnboarding {
		query = query.Where(squirrel.NotEq{"day": models.OnboardingDay})
	}
	if filter.OnlyOnboarding {
		query = query.Where(squirrel.Eq{"day": models.OnboardingDay})
	}
	return query
}

func (r *answerRepository) List(ctx context.Context, filter models.AnswerFilter) ([]models.AnswerRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("answer_repo")
	log.Debug("listing answers with filter: user_id=%d, day=%s, difficulty=%s, exclude_onboarding=%t",
		filter.UserID, filter.Day, filter.Difficulty, filter.ExcludeOnboarding)

	query := sqlBuilder.Select(
		"id", "user_id", "day", "difficulty", "slot", "category", "subcategory", "question",
		"correct_answer", "user_answer", "correct", "latency_ms", "created_at",
	).From("answers")
	query = applyAnswerFilter(query, filter).OrderBy("day DESC", "difficulty ASC", "slot ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list answers: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.AnswerRecord
	for rows.Next() {
		var a models.AnswerRecord
		var correct int
		if err := rows.Scan(&a.ID, &a.UserID, &a.Day, &a.Difficulty, &a.Slot, &a.Category, &a.Subcategory, &a.Question,
			&a.CorrectAnswer, &a.UserAnswer, &correct, &a.LatencyMs, &a.CreatedAt); err != nil {
			log.Error("failed to scan answer row: %v", err)
			return nil, err
		}
		a.Correct = correct == 1
		records = append(records, a)
	}
	log.Debug("found %d answers", len(records))
	return records, rows.Err()
}

func (r *answerRepository) Count(ctx context.Context, filter models.AnswerFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("answer_repo")

	sql, args, err := applyAnswerFilter(sqlBuilder.Select("COUNT(*)").From("answers"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		log.Error("failed to count answers: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *answerRepository) Accuracy(ctx context.Context, filter models.AnswerFilter) (models.Accuracy, error) {
	log := logger.FromContext(ctx).WithPrefix("answer_repo")

	query := sqlBuilder.Select("COUNT(*)", "COALESCE(SUM(correct), 0)").From("answers")
	sql, args, err := applyAnswerFilter(query, filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return models.Accuracy{}, err
	}

	var acc models.Accuracy
	if err := r.db.QueryRowContext(ctx, sql, args...).Scan(&acc.Total, &acc.Correct); err != nil {
		log.Error("failed to aggregate answers: %v", err)
		return models.Accuracy{}, err
	}
	acc.Percentage = models.Percent(acc.Correct, acc.Total)
	return acc, nil
}

func (r *answerRepository) Population(ctx context.Context, filter models.PopulationFilter) ([]models.UserAccuracy, error) {
	log := logger.FromContext(ctx).WithPrefix("answer_repo")
	log.Debug("aggregating population: difficulty=%s, category=%s, users=%d, min_attempts=%d",
		filter.Difficulty, filter.Category, len(filter.UserIDs), filter.MinAttempts)

	query := sqlBuilder.Select("user_id", "COUNT(*) AS attempts", "COALESCE(SUM(correct), 0) AS correct").
		From("answers").
		Where(squirrel.NotEq{"day": models.OnboardingDay})
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": filter.Difficulty})
	}
	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.UserIDs != nil {
		query = query.Where(squirrel.Eq{"user_id": filter.UserIDs})
	}
	query = query.GroupBy("user_id")
	if filter.MinAttempts > 0 {
		query = query.Having("COUNT(*) >= ?", filter.MinAttempts)
	}
	query = query.OrderBy("user_id ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to aggregate population: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.UserAccuracy
	for rows.Next() {
		var ua models.UserAccuracy
		if err := rows.Scan(&ua.UserID, &ua.Attempts, &ua.Correct); err != nil {
			log.Error("failed to scan population row: %v", err)
			return nil, err
		}
		out = append(out, ua)
	}
	return out, rows.Err()
}
