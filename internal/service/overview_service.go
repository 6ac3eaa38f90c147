package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bnnadi/confida-service-sub000/internal/repository"
)

// PerformanceOverview es el snapshot integral de desempeño de un usuario
// para una ventana: métricas agregadas, tendencia de puntaje y heatmap.
type PerformanceOverview struct {
	UserID      string             `json:"user_id"`
	TimeWindow  string             `json:"time_window"`
	GeneratedAt time.Time          `json:"generated_at"`
	Metrics     PerformanceMetrics `json:"metrics"`
	ScoreTrend  Trend              `json:"score_trend"`
	Heatmap     ActivityHeatmap    `json:"heatmap"`
}

// OverviewService compone calculador, analizador de tendencias y heatmap
// sobre una única lectura de sesiones, con cache tipo cache-aside.
type OverviewService struct {
	sessions repository.SessionRepository
	metrics  *MetricsCalculator
	trends   *TrendAnalyzer
	heatmaps *HeatmapBuilder
	cache    OverviewCache
	cfg      AnalyticsConfig
	logger   *zap.Logger
}

func NewOverviewService(
	sessions repository.SessionRepository,
	metrics *MetricsCalculator,
	trends *TrendAnalyzer,
	heatmaps *HeatmapBuilder,
	cache OverviewCache,
	cfg AnalyticsConfig,
	logger *zap.Logger,
) *OverviewService {
	return &OverviewService{
		sessions: sessions,
		metrics:  metrics,
		trends:   trends,
		heatmaps: heatmaps,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

// Overview devuelve el snapshot del usuario para [start, end]. Errores del
// cache se degradan a log: el cálculo sigue contra storage.
func (s *OverviewService) Overview(ctx context.Context, userID string, start, end time.Time) (PerformanceOverview, error) {
	window := fmt.Sprintf("%s_%s", start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))

	if s.cache != nil {
		cached, hit, err := s.cache.Get(userID, window)
		if err != nil {
			s.logger.Warn("overview cache get failed", zap.Error(err), zap.String("user_id", userID))
		} else if hit {
			return cached, nil
		}
	}

	sessions, err := s.sessions.ListByUser(ctx, userID, start, end)
	if err != nil {
		return PerformanceOverview{}, fmt.Errorf("list sessions: %w", err)
	}

	overview := PerformanceOverview{
		UserID:      userID,
		TimeWindow:  window,
		GeneratedAt: time.Now().UTC(),
		Metrics:     s.metrics.Calculate(sessions, window),
		ScoreTrend:  s.trends.Analyze(sessions, TrendMetricAverageScore, window),
		Heatmap:     s.heatmaps.Build(sessions),
	}

	if s.cache != nil {
		if err := s.cache.Set(userID, window, overview, s.cfg.OverviewCacheTTL); err != nil {
			s.logger.Warn("overview cache set failed", zap.Error(err), zap.String("user_id", userID))
		}
	}

	return overview, nil
}
