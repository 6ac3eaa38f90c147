package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
	"github.com/bnnadi/confida-service-sub000/internal/repository"
)

var ErrSessionNotFound = errors.New("session not found")

// DimensionDelta es la diferencia de una dimensión entre dos lados de una
// comparación. El lado ausente aporta 0.
type DimensionDelta struct {
	Name     string  `json:"name"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}

// PeriodComparison compara dos períodos calculados de forma independiente.
type PeriodComparison struct {
	Current               PerformanceMetrics `json:"current"`
	Previous              PerformanceMetrics `json:"previous"`
	ImprovementPercentage float64            `json:"improvement_percentage"`
	DimensionDeltas       []DimensionDelta   `json:"dimension_deltas"`
}

// SessionComparison compara dos sesiones concretas del mismo usuario.
type SessionComparison struct {
	FirstID        string             `json:"first_id"`
	SecondID       string             `json:"second_id"`
	FirstScore     float64            `json:"first_score"`
	SecondScore    float64            `json:"second_score"`
	ScoreDelta     float64            `json:"score_delta"`
	CategoryDeltas map[string]float64 `json:"category_deltas"`
	Summary        string             `json:"summary"`
}

// ComparisonEngine calcula deltas entre períodos o entre sesiones.
type ComparisonEngine struct {
	sessions   repository.SessionRepository
	calculator *MetricsCalculator
	normalizer ScoreNormalizer
	logger     *zap.Logger
}

func NewComparisonEngine(sessions repository.SessionRepository, calculator *MetricsCalculator, logger *zap.Logger) *ComparisonEngine {
	return &ComparisonEngine{
		sessions:   sessions,
		calculator: calculator,
		logger:     logger,
	}
}

// ComparePeriods corre el calculador sobre cada período por separado. Los
// deltas por dimensión se recomputan sobre el set completo de sesiones de
// cada lado, no sobre las listas top/bottom-3.
func (e *ComparisonEngine) ComparePeriods(current, previous []domain.Session) PeriodComparison {
	comparison := PeriodComparison{
		Current:         e.calculator.Calculate(current, "current"),
		Previous:        e.calculator.Calculate(previous, "previous"),
		DimensionDeltas: []DimensionDelta{},
	}

	switch {
	case comparison.Previous.AverageScore > 0:
		comparison.ImprovementPercentage = (comparison.Current.AverageScore - comparison.Previous.AverageScore) / comparison.Previous.AverageScore * 100
	case comparison.Current.AverageScore == 0:
		comparison.ImprovementPercentage = 0
	default:
		comparison.ImprovementPercentage = 100
	}

	currentDims := e.calculator.dimensionAverages(current)
	previousDims := e.calculator.dimensionAverages(previous)
	for _, name := range dimensionUnion(currentDims, previousDims) {
		comparison.DimensionDeltas = append(comparison.DimensionDeltas, DimensionDelta{
			Name:     name,
			Previous: previousDims[name],
			Current:  currentDims[name],
			Delta:    currentDims[name] - previousDims[name],
		})
	}

	return comparison
}

// CompareSessions compara dos sesiones puntuales del usuario. Si alguna no
// existe o no le pertenece, devuelve ErrSessionNotFound.
func (e *ComparisonEngine) CompareSessions(ctx context.Context, userID, firstID, secondID string) (SessionComparison, error) {
	first, err := e.ownedSession(ctx, userID, firstID)
	if err != nil {
		return SessionComparison{}, err
	}
	second, err := e.ownedSession(ctx, userID, secondID)
	if err != nil {
		return SessionComparison{}, err
	}

	comparison := SessionComparison{
		FirstID:        firstID,
		SecondID:       secondID,
		CategoryDeltas: map[string]float64{},
	}

	if overall := e.normalizer.ExtractOverall(first.ScorePayload); overall != nil {
		comparison.FirstScore = *overall
	}
	if overall := e.normalizer.ExtractOverall(second.ScorePayload); overall != nil {
		comparison.SecondScore = *overall
	}
	comparison.ScoreDelta = comparison.SecondScore - comparison.FirstScore

	firstDims := e.normalizer.ExtractDimensions(first.ScorePayload)
	secondDims := e.normalizer.ExtractDimensions(second.ScorePayload)
	for _, name := range dimensionUnion(firstDims, secondDims) {
		comparison.CategoryDeltas[name] = secondDims[name] - firstDims[name]
	}

	comparison.Summary = sessionSummary(comparison)
	return comparison, nil
}

func (e *ComparisonEngine) ownedSession(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	session, err := e.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	if session.UserID != userID {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// sessionSummary arma el resumen narrativo: quién puntuó más alto y qué
// dimensiones mejoraron o empeoraron (solo deltas estrictos).
func sessionSummary(c SessionComparison) string {
	var parts []string

	switch {
	case c.ScoreDelta > 0:
		parts = append(parts, fmt.Sprintf("The second session scored %.1f points higher.", c.ScoreDelta))
	case c.ScoreDelta < 0:
		parts = append(parts, fmt.Sprintf("The second session scored %.1f points lower.", math.Abs(c.ScoreDelta)))
	default:
		parts = append(parts, "Both sessions scored the same overall.")
	}

	var improved, declined []string
	for _, name := range sortedKeys(c.CategoryDeltas) {
		switch {
		case c.CategoryDeltas[name] > 0:
			improved = append(improved, name)
		case c.CategoryDeltas[name] < 0:
			declined = append(declined, name)
		}
	}
	if len(improved) > 0 {
		parts = append(parts, "Improved: "+strings.Join(improved, ", ")+".")
	}
	if len(declined) > 0 {
		parts = append(parts, "Declined: "+strings.Join(declined, ", ")+".")
	}

	return strings.Join(parts, " ")
}

func dimensionUnion(a, b map[string]float64) []string {
	seen := map[string]struct{}{}
	for name := range a {
		seen[name] = struct{}{}
	}
	for name := range b {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
