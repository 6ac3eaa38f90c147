package service

import "time"

// AnalyticsConfig agrupa las constantes de agregación del motor. Se pasa
// por valor a cada componente en construcción; los tests la sobreescriben
// en lugar de depender de globales.
type AnalyticsConfig struct {
	// TrendChangeThreshold es la banda muerta (en %) bajo la cual una
	// tendencia se clasifica como stable.
	TrendChangeThreshold float64
	// TrendConfidenceDivisor controla cuántos puntos hacen falta para
	// confianza 1.0.
	TrendConfidenceDivisor float64
	// GoalWindowDays es la ventana móvil para el refresco de metas.
	GoalWindowDays int
	// StreakMaxDays acota la caminata hacia atrás del cálculo de racha.
	StreakMaxDays int
	// OverviewCacheTTL es la vigencia del snapshot de overview en cache.
	OverviewCacheTTL time.Duration
}

// DefaultAnalyticsConfig devuelve los valores de producción.
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		TrendChangeThreshold:   5.0,
		TrendConfidenceDivisor: 10.0,
		GoalWindowDays:         30,
		StreakMaxDays:          365,
		OverviewCacheTTL:       5 * time.Minute,
	}
}
