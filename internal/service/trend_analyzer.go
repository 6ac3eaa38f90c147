package service

import (
	"math"
	"sort"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

// TrendMetric selecciona qué valor por sesión alimenta la serie temporal.
type TrendMetric string

const (
	TrendMetricAverageScore   TrendMetric = "average_score"
	TrendMetricCompletionRate TrendMetric = "completion_rate"
	TrendMetricTotalSessions  TrendMetric = "total_sessions"
	TrendMetricResponseTime   TrendMetric = "response_time"
)

// TrendDirection clasifica el cambio reciente de una métrica.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TrendPoint es un punto de la serie, con fecha calendario en formato
// 2006-01-02 y valor redondeado a 2 decimales.
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type Trend struct {
	Metric     TrendMetric    `json:"metric"`
	TimeWindow string         `json:"time_window"`
	Points     []TrendPoint   `json:"points"`
	Direction  TrendDirection `json:"direction"`
	ChangePct  float64        `json:"change_pct"`
	Confidence float64        `json:"confidence"`
}

// TrendAnalyzer bucketiza una métrica por fecha de creación y clasifica su
// dirección contra la banda muerta configurada.
type TrendAnalyzer struct {
	cfg        AnalyticsConfig
	normalizer ScoreNormalizer
}

func NewTrendAnalyzer(cfg AnalyticsConfig) *TrendAnalyzer {
	return &TrendAnalyzer{cfg: cfg}
}

func (a *TrendAnalyzer) Analyze(sessions []domain.Session, metric TrendMetric, window string) Trend {
	trend := Trend{
		Metric:     metric,
		TimeWindow: window,
		Points:     a.bucketByDate(sessions, metric),
		Direction:  TrendStable,
	}

	if len(trend.Points) < 2 {
		return trend
	}

	trend.Direction, trend.ChangePct = a.classify(trend.Points)
	trend.Confidence = math.Min(float64(len(trend.Points))/a.cfg.TrendConfidenceDivisor, 1.0)
	return trend
}

// bucketByDate agrupa por fecha calendario de creación. total_sessions
// suma los valores del día; el resto promedia.
func (a *TrendAnalyzer) bucketByDate(sessions []domain.Session, metric TrendMetric) []TrendPoint {
	sums := map[string]float64{}
	counts := map[string]int{}

	for _, s := range sessions {
		value, ok := a.sessionValue(s, metric)
		if !ok {
			continue
		}
		date := s.CreatedAt.UTC().Format("2006-01-02")
		sums[date] += value
		counts[date]++
	}

	dates := make([]string, 0, len(sums))
	for date := range sums {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]TrendPoint, 0, len(dates))
	for _, date := range dates {
		value := sums[date]
		if metric != TrendMetricTotalSessions {
			value /= float64(counts[date])
		}
		points = append(points, TrendPoint{Date: date, Value: math.Round(value*100) / 100})
	}
	return points
}

func (a *TrendAnalyzer) sessionValue(s domain.Session, metric TrendMetric) (float64, bool) {
	switch metric {
	case TrendMetricAverageScore:
		overall := a.normalizer.ExtractOverall(s.ScorePayload)
		if overall == nil {
			return 0, false
		}
		return *overall, true
	case TrendMetricCompletionRate:
		if s.Status == domain.SessionStatusCompleted {
			return 1.0, true
		}
		return 0.0, true
	case TrendMetricTotalSessions:
		return 1.0, true
	case TrendMetricResponseTime:
		items := s.TotalItems
		if items < 1 {
			items = 1
		}
		return s.UpdatedAt.Sub(s.CreatedAt).Seconds() / float64(items), true
	default:
		return 0, false
	}
}

// classify parte la serie en dos mitades (punto medio por piso) y compara
// promedios. Para up se reporta el porcentaje con signo; para down y
// stable, su valor absoluto.
func (a *TrendAnalyzer) classify(points []TrendPoint) (TrendDirection, float64) {
	mid := len(points) / 2
	firstMean := meanPoints(points[:mid])
	secondMean := meanPoints(points[mid:])

	if firstMean == 0 {
		if secondMean > 0 {
			return TrendUp, 100.0
		}
		return TrendStable, 0.0
	}

	pct := (secondMean - firstMean) / math.Abs(firstMean) * 100
	switch {
	case pct > a.cfg.TrendChangeThreshold:
		return TrendUp, pct
	case pct < -a.cfg.TrendChangeThreshold:
		return TrendDown, math.Abs(pct)
	default:
		return TrendStable, math.Abs(pct)
	}
}

func meanPoints(points []TrendPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points))
}
