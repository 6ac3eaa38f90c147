package service

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// scoredSession arma una sesión completada con payload escalar.
func scoredSession(score float64, created time.Time) domain.Session {
	return payloadSession(fmt.Sprintf("%g", score), created)
}

func payloadSession(payload string, created time.Time) domain.Session {
	var raw json.RawMessage
	if payload != "" {
		raw = json.RawMessage(payload)
	}
	return domain.Session{
		UserID:         "user-1",
		Status:         domain.SessionStatusCompleted,
		TotalItems:     5,
		CompletedItems: 5,
		ScorePayload:   raw,
		CreatedAt:      created,
		UpdatedAt:      created.Add(10 * time.Minute),
	}
}

func TestCalculateEmptyCollection(t *testing.T) {
	calc := NewMetricsCalculator()

	metrics := calc.Calculate(nil, "30d")

	if metrics.TotalSessions != 0 {
		t.Fatalf("expected 0 sessions, got %d", metrics.TotalSessions)
	}
	if metrics.AverageScore != 0 {
		t.Fatalf("expected 0 average score, got %v", metrics.AverageScore)
	}
	if metrics.CompletionRate != 0 {
		t.Fatalf("expected 0 completion rate, got %v", metrics.CompletionRate)
	}
	if metrics.AverageResponseTime != 0 {
		t.Fatalf("expected 0 response time, got %v", metrics.AverageResponseTime)
	}
	if len(metrics.StrongestAreas) != 0 || len(metrics.ImprovementAreas) != 0 {
		t.Fatalf("expected empty area lists, got %v / %v", metrics.StrongestAreas, metrics.ImprovementAreas)
	}
}

func TestCalculateImprovementTrendScenario(t *testing.T) {
	calc := NewMetricsCalculator()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	sessions := []domain.Session{
		scoredSession(5.0, base),
		scoredSession(6.0, base.AddDate(0, 0, 1)),
		scoredSession(7.0, base.AddDate(0, 0, 2)),
		scoredSession(9.0, base.AddDate(0, 0, 3)),
	}

	metrics := calc.Calculate(sessions, "30d")

	// mean([7,9]) - mean([5,6]) = 8.0 - 5.5
	if !almostEqual(metrics.ImprovementTrend, 2.5) {
		t.Fatalf("expected trend 2.5, got %v", metrics.ImprovementTrend)
	}
	if !almostEqual(metrics.AverageScore, 6.75) {
		t.Fatalf("expected average 6.75, got %v", metrics.AverageScore)
	}
	if metrics.AverageScore < 5.0 || metrics.AverageScore > 9.0 {
		t.Fatalf("average %v outside [min, max]", metrics.AverageScore)
	}
}

func TestCalculateRatesAndResponseTime(t *testing.T) {
	calc := NewMetricsCalculator()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	completed := scoredSession(8.0, base)
	completed.CompletedItems = 3
	completed.UpdatedAt = base.Add(60 * time.Second)

	abandoned := scoredSession(4.0, base.AddDate(0, 0, 1))
	abandoned.Status = domain.SessionStatusAbandoned
	abandoned.CompletedItems = 3
	abandoned.UpdatedAt = abandoned.CreatedAt.Add(60 * time.Second)

	metrics := calc.Calculate([]domain.Session{completed, abandoned}, "7d")

	if !almostEqual(metrics.CompletionRate, 50.0) {
		t.Fatalf("expected 50%% completion, got %v", metrics.CompletionRate)
	}
	if metrics.TotalItemsAnswered != 6 {
		t.Fatalf("expected 6 items answered, got %d", metrics.TotalItemsAnswered)
	}
	// 120 segundos totales sobre 6 items.
	if !almostEqual(metrics.AverageResponseTime, 20.0) {
		t.Fatalf("expected 20s avg response, got %v", metrics.AverageResponseTime)
	}
}

func TestCalculateExcludesUnscoredFromAverage(t *testing.T) {
	calc := NewMetricsCalculator()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	sessions := []domain.Session{
		scoredSession(8.0, base),
		payloadSession("", base.AddDate(0, 0, 1)),
		payloadSession(`{"notes": "free text"}`, base.AddDate(0, 0, 2)),
	}

	metrics := calc.Calculate(sessions, "7d")

	if !almostEqual(metrics.AverageScore, 8.0) {
		t.Fatalf("unscored sessions must not drag the average, got %v", metrics.AverageScore)
	}
	// Una sola sesión con puntaje: no alcanza para tendencia.
	if metrics.ImprovementTrend != 0 {
		t.Fatalf("expected 0 trend with one scored session, got %v", metrics.ImprovementTrend)
	}
}

func TestCalculateAreaListsOverlapWithFewDimensions(t *testing.T) {
	calc := NewMetricsCalculator()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	sessions := []domain.Session{
		payloadSession(`{"overall": 7, "python": 9, "sql": 4}`, base),
		payloadSession(`{"overall": 6, "python": 7, "sql": 6}`, base.AddDate(0, 0, 1)),
	}

	metrics := calc.Calculate(sessions, "7d")

	if len(metrics.StrongestAreas) != 2 || len(metrics.ImprovementAreas) != 2 {
		t.Fatalf("expected both lists with 2 entries, got %v / %v", metrics.StrongestAreas, metrics.ImprovementAreas)
	}
	if metrics.StrongestAreas[0].Name != "python" || !almostEqual(metrics.StrongestAreas[0].Average, 8.0) {
		t.Fatalf("expected python 8.0 strongest, got %+v", metrics.StrongestAreas[0])
	}
	if metrics.ImprovementAreas[0].Name != "sql" || !almostEqual(metrics.ImprovementAreas[0].Average, 5.0) {
		t.Fatalf("expected sql 5.0 weakest first, got %+v", metrics.ImprovementAreas[0])
	}
}

func TestCalculateTrendNeedsScoredHalves(t *testing.T) {
	calc := NewMetricsCalculator()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	// Dos sesiones con puntaje pero ambas en la segunda mitad cronológica:
	// la primera mitad queda sin puntaje y la tendencia es 0.
	sessions := []domain.Session{
		payloadSession(`{"notes": "n"}`, base),
		payloadSession(`{"notes": "n"}`, base.AddDate(0, 0, 1)),
		scoredSession(6.0, base.AddDate(0, 0, 2)),
		scoredSession(9.0, base.AddDate(0, 0, 3)),
	}

	metrics := calc.Calculate(sessions, "7d")
	if metrics.ImprovementTrend != 0 {
		t.Fatalf("expected 0 trend when a half has no scores, got %v", metrics.ImprovementTrend)
	}
}
