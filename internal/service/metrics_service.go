package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/bnnadi/confida-service-sub000/internal/repository"
)

// CategoryScore es el promedio de puntaje de las respuestas de una categoría.
type CategoryScore struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Answered int     `json:"answered"`
}

// SessionBreakdown desglosa una sesión por categoría y dificultad, cruzando
// respuestas con los metadatos de sus preguntas.
type SessionBreakdown struct {
	SessionID              string          `json:"session_id"`
	CategoryScores         []CategoryScore `json:"category_scores"`
	DifficultyDistribution map[string]int  `json:"difficulty_distribution"`
}

// MetricsService combina el calculador puro con los repositorios de
// respuestas y preguntas para los desgloses por sesión.
type MetricsService struct {
	answers    repository.AnswerRepository
	questions  repository.QuestionRepository
	calculator *MetricsCalculator
	normalizer ScoreNormalizer
	logger     *zap.Logger
}

func NewMetricsService(
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	calculator *MetricsCalculator,
	logger *zap.Logger,
) *MetricsService {
	return &MetricsService{
		answers:    answers,
		questions:  questions,
		calculator: calculator,
		logger:     logger,
	}
}

// Calculator expone el calculador puro para quien ya tiene las sesiones.
func (s *MetricsService) Calculator() *MetricsCalculator {
	return s.calculator
}

// SessionBreakdown arma el desglose de una sesión. Respuestas sin puntaje
// extraíble no aportan al promedio de su categoría; preguntas sin respuesta
// igual cuentan en la distribución de dificultad.
func (s *MetricsService) SessionBreakdown(ctx context.Context, sessionID string) (SessionBreakdown, error) {
	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return SessionBreakdown{}, fmt.Errorf("list answers: %w", err)
	}
	questions, err := s.questions.ListBySession(ctx, sessionID)
	if err != nil {
		return SessionBreakdown{}, fmt.Errorf("list questions: %w", err)
	}

	breakdown := SessionBreakdown{
		SessionID:              sessionID,
		CategoryScores:         []CategoryScore{},
		DifficultyDistribution: map[string]int{},
	}

	byQuestion := make(map[string]string, len(questions))
	for _, q := range questions {
		byQuestion[q.ID] = q.Category
		if q.Difficulty != "" {
			breakdown.DifficultyDistribution[q.Difficulty]++
		}
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, a := range answers {
		category, ok := byQuestion[a.QuestionID]
		if !ok || category == "" {
			continue
		}
		overall := s.normalizer.ExtractOverall(a.ScorePayload)
		if overall == nil {
			continue
		}
		sums[category] += *overall
		counts[category]++
	}

	for category, sum := range sums {
		breakdown.CategoryScores = append(breakdown.CategoryScores, CategoryScore{
			Category: category,
			Average:  sum / float64(counts[category]),
			Answered: counts[category],
		})
	}
	sort.Slice(breakdown.CategoryScores, func(i, j int) bool {
		a, b := breakdown.CategoryScores[i], breakdown.CategoryScores[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		return a.Category < b.Category
	})

	return breakdown, nil
}
