package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
	"github.com/bnnadi/confida-service-sub000/internal/repository"
)

const defaultPageLimit = 20

// SessionQuery combina los filtros estructurados con el filtro por rango
// de puntaje (a nivel payload) y la paginación.
type SessionQuery struct {
	UserID   string
	Role     string
	Status   string
	From     *time.Time
	To       *time.Time
	MinScore *float64
	MaxScore *float64
	Limit    int
	Offset   int
}

// SessionPage es una página de sesiones filtradas.
//
// Total es el conteo a nivel storage, SALVO que la consulta traiga rango de
// puntaje: en ese caso se reemplaza por el conteo posterior al filtro de
// puntaje. El significado del total cambia según la consulta; es contrato
// explícito, no un bug.
type SessionPage struct {
	Sessions []domain.Session `json:"sessions"`
	Total    int              `json:"total"`
}

// FilterEngine resuelve filtros estructurados en storage y refina por
// puntaje en memoria, porque el payload es opaco para SQL.
type FilterEngine struct {
	sessions   repository.SessionRepository
	normalizer ScoreNormalizer
}

func NewFilterEngine(sessions repository.SessionRepository) *FilterEngine {
	return &FilterEngine{sessions: sessions}
}

func (e *FilterEngine) Filter(ctx context.Context, q SessionQuery) (SessionPage, error) {
	filtered, total, err := e.sessions.ListFiltered(ctx, repository.SessionFilter{
		UserID: q.UserID,
		Role:   q.Role,
		Status: q.Status,
		From:   q.From,
		To:     q.To,
	})
	if err != nil {
		return SessionPage{}, fmt.Errorf("list filtered sessions: %w", err)
	}

	if q.MinScore != nil || q.MaxScore != nil {
		scored := make([]domain.Session, 0, len(filtered))
		for _, s := range filtered {
			overall := e.normalizer.ExtractOverall(s.ScorePayload)
			if overall == nil {
				continue
			}
			if q.MinScore != nil && *overall < *q.MinScore {
				continue
			}
			if q.MaxScore != nil && *overall > *q.MaxScore {
				continue
			}
			scored = append(scored, s)
		}
		filtered = scored
		total = len(scored)
	}

	return SessionPage{
		Sessions: paginate(filtered, q.Limit, q.Offset),
		Total:    total,
	}, nil
}

func paginate(sessions []domain.Session, limit, offset int) []domain.Session {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(sessions) {
		return []domain.Session{}
	}
	end := offset + limit
	if end > len(sessions) {
		end = len(sessions)
	}
	return sessions[offset:end]
}
