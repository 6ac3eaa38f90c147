package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

type QuestionRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.Question, error)
}

type PgQuestionRepository struct {
	pool *pgxpool.Pool
}

func NewPgQuestionRepository(pool *pgxpool.Pool) *PgQuestionRepository {
	return &PgQuestionRepository{pool: pool}
}

func (r *PgQuestionRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Question, error) {
	const query = `
		SELECT id, session_id, category, difficulty, position
		FROM questions
		WHERE session_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(
			&q.ID,
			&q.SessionID,
			&q.Category,
			&q.Difficulty,
			&q.Position,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}
