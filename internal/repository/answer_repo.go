package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

type AnswerRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.Answer, error)
}

type PgAnswerRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnswerRepository(pool *pgxpool.Pool) *PgAnswerRepository {
	return &PgAnswerRepository{pool: pool}
}

func (r *PgAnswerRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	const query = `
		SELECT id, session_id, question_id, content, score_payload, created_at
		FROM answers
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		var payload []byte

		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.QuestionID,
			&a.Content,
			&payload,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.ScorePayload = payload
		answers = append(answers, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}
