package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

type GoalRepository interface {
	Upsert(ctx context.Context, goal domain.Goal) error
	GetByID(ctx context.Context, id string) (domain.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Goal, error)
}

type PgGoalRepository struct {
	pool *pgxpool.Pool
}

func NewPgGoalRepository(pool *pgxpool.Pool) *PgGoalRepository {
	return &PgGoalRepository{pool: pool}
}

// Upsert escribe la meta completa. El refresco de progreso reescribe el
// mismo registro; el último escritor gana y eso es aceptado.
func (r *PgGoalRepository) Upsert(ctx context.Context, goal domain.Goal) error {
	const query = `
		INSERT INTO goals (id, user_id, title, description, goal_type, dimension, target_value, current_value, target_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			current_value = EXCLUDED.current_value,
			target_date = EXCLUDED.target_date,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	var targetDate interface{}
	if goal.TargetDate != nil {
		targetDate = *goal.TargetDate
	}

	_, err := r.pool.Exec(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.GoalType,
		goal.Dimension,
		goal.TargetValue,
		goal.CurrentValue,
		targetDate,
		goal.Status,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	return err
}

func (r *PgGoalRepository) GetByID(ctx context.Context, id string) (domain.Goal, error) {
	const query = `
		SELECT id, user_id, title, description, goal_type, dimension, target_value, current_value, target_date, status, created_at, updated_at
		FROM goals
		WHERE id = $1
	`

	var g domain.Goal
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.UserID,
		&g.Title,
		&g.Description,
		&g.GoalType,
		&g.Dimension,
		&g.TargetValue,
		&g.CurrentValue,
		&g.TargetDate,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return domain.Goal{}, err
	}
	return g, nil
}

func (r *PgGoalRepository) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	const query = `
		SELECT id, user_id, title, description, goal_type, dimension, target_value, current_value, target_date, status, created_at, updated_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		var g domain.Goal
		if err := rows.Scan(
			&g.ID,
			&g.UserID,
			&g.Title,
			&g.Description,
			&g.GoalType,
			&g.Dimension,
			&g.TargetValue,
			&g.CurrentValue,
			&g.TargetDate,
			&g.Status,
			&g.CreatedAt,
			&g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}
