package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

// SessionFilter agrupa los filtros estructurados que se resuelven en storage.
// El filtro por rango de puntaje NO vive acá: el payload es opaco para SQL
// y se refina en memoria en el FilterEngine.
type SessionFilter struct {
	UserID string
	Role   string
	Status string
	From   *time.Time
	To     *time.Time
}

type SessionRepository interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	ListByUser(ctx context.Context, userID string, start, end time.Time) ([]domain.Session, error)
	ListFiltered(ctx context.Context, f SessionFilter) ([]domain.Session, int, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, role, status, total_items, completed_items, score_payload, created_at, updated_at`

func scanSession(row pgx.Row) (domain.Session, error) {
	var s domain.Session
	var payload []byte
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Role,
		&s.Status,
		&s.TotalItems,
		&s.CompletedItems,
		&payload,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	s.ScorePayload = payload
	return s, nil
}

func (r *PgSessionRepository) GetByID(ctx context.Context, id string) (domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
	`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

// ListByUser devuelve las sesiones del usuario en [start, end], ascendente
// por fecha de creación. Ese orden es contrato: los cálculos de tendencia
// dependen de él.
func (r *PgSessionRepository) ListByUser(ctx context.Context, userID string, start, end time.Time) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListFiltered aplica los filtros estructurados en SQL y devuelve la
// colección ordenada junto con el total de coincidencias a nivel storage.
func (r *PgSessionRepository) ListFiltered(ctx context.Context, f SessionFilter) ([]domain.Session, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{f.UserID}

	if f.Role != "" {
		args = append(args, "%"+f.Role+"%")
		where = append(where, fmt.Sprintf("role ILIKE $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM sessions WHERE ` + clause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE ` + clause + `
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func collectSessions(rows pgx.Rows) ([]domain.Session, error) {
	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
