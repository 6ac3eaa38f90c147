package service

import (
	"sort"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

// DimensionAverage es el promedio de una dimensión sobre una colección.
type DimensionAverage struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

// PerformanceMetrics es el agregado de una colección de sesiones para una
// ventana de tiempo.
type PerformanceMetrics struct {
	TimeWindow          string             `json:"time_window"`
	TotalSessions       int                `json:"total_sessions"`
	CompletedSessions   int                `json:"completed_sessions"`
	CompletionRate      float64            `json:"completion_rate"`
	TotalItemsAnswered  int                `json:"total_items_answered"`
	AverageResponseTime float64            `json:"average_response_time"`
	AverageScore        float64            `json:"average_score"`
	StrongestAreas      []DimensionAverage `json:"strongest_areas"`
	ImprovementAreas    []DimensionAverage `json:"improvement_areas"`
	ImprovementTrend    float64            `json:"improvement_trend"`
}

// MetricsCalculator agrega una colección de sesiones ya traída por el
// caller. Es puro y sin estado: no toca storage ni muta la entrada.
type MetricsCalculator struct {
	normalizer ScoreNormalizer
}

func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

func (c *MetricsCalculator) Calculate(sessions []domain.Session, window string) PerformanceMetrics {
	metrics := PerformanceMetrics{
		TimeWindow:       window,
		TotalSessions:    len(sessions),
		StrongestAreas:   []DimensionAverage{},
		ImprovementAreas: []DimensionAverage{},
	}

	var completed int
	var totalSeconds float64
	var scoreSum float64
	var scoreCount int

	for _, s := range sessions {
		if s.Status == domain.SessionStatusCompleted {
			completed++
		}
		metrics.TotalItemsAnswered += s.CompletedItems
		totalSeconds += s.UpdatedAt.Sub(s.CreatedAt).Seconds()

		if overall := c.normalizer.ExtractOverall(s.ScorePayload); overall != nil {
			scoreSum += *overall
			scoreCount++
		}
	}

	metrics.CompletedSessions = completed
	if metrics.TotalSessions > 0 {
		metrics.CompletionRate = float64(completed) / float64(metrics.TotalSessions) * 100
	}
	if metrics.TotalItemsAnswered > 0 {
		metrics.AverageResponseTime = totalSeconds / float64(metrics.TotalItemsAnswered)
	}
	// Las sesiones sin puntaje extraíble quedan fuera del promedio, no
	// cuentan como cero.
	if scoreCount > 0 {
		metrics.AverageScore = scoreSum / float64(scoreCount)
	}

	ranked := rankDimensions(c.dimensionAverages(sessions))
	// Con menos de 6 dimensiones distintas ambas listas pueden solaparse;
	// es el comportamiento esperado.
	if len(ranked) > 0 {
		top := ranked
		if len(top) > 3 {
			top = top[:3]
		}
		metrics.StrongestAreas = append(metrics.StrongestAreas, top...)

		bottom := ranked
		if len(bottom) > 3 {
			bottom = bottom[len(bottom)-3:]
		}
		for i := len(bottom) - 1; i >= 0; i-- {
			metrics.ImprovementAreas = append(metrics.ImprovementAreas, bottom[i])
		}
	}

	metrics.ImprovementTrend = c.improvementTrend(sessions, scoreCount)

	return metrics
}

// dimensionAverages promedia cada dimensión sobre la unión de dimensiones
// vistas en la colección.
func (c *MetricsCalculator) dimensionAverages(sessions []domain.Session) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}

	for _, s := range sessions {
		for name, value := range c.normalizer.ExtractDimensions(s.ScorePayload) {
			sums[name] += value
			counts[name]++
		}
	}

	averages := make(map[string]float64, len(sums))
	for name, sum := range sums {
		averages[name] = sum / float64(counts[name])
	}
	return averages
}

// improvementTrend compara el promedio de la segunda mitad cronológica
// contra la primera. Necesita al menos 2 sesiones con puntaje.
func (c *MetricsCalculator) improvementTrend(sessions []domain.Session, scoreCount int) float64 {
	if scoreCount < 2 || len(sessions) < 2 {
		return 0
	}

	ordered := make([]domain.Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	mid := len(ordered) / 2
	firstMean, firstOK := c.meanOverall(ordered[:mid])
	secondMean, secondOK := c.meanOverall(ordered[mid:])
	if !firstOK || !secondOK {
		return 0
	}
	return secondMean - firstMean
}

func (c *MetricsCalculator) meanOverall(sessions []domain.Session) (float64, bool) {
	var sum float64
	var count int
	for _, s := range sessions {
		if overall := c.normalizer.ExtractOverall(s.ScorePayload); overall != nil {
			sum += *overall
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// rankDimensions ordena descendente por promedio, con desempate por nombre
// para que el resultado sea determinista.
func rankDimensions(averages map[string]float64) []DimensionAverage {
	ranked := make([]DimensionAverage, 0, len(averages))
	for name, avg := range averages {
		ranked = append(ranked, DimensionAverage{Name: name, Average: avg})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average > ranked[j].Average
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}
