package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del motor de analítica.
// Los umbrales de agregación viven acá y no como globales de paquete,
// para que cada componente los reciba en construcción.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TrendChangeThreshold    float64 `env:"TREND_CHANGE_THRESHOLD" envDefault:"5.0"`
	TrendConfidenceDivisor  float64 `env:"TREND_CONFIDENCE_DIVISOR" envDefault:"10"`
	GoalWindowDays          int     `env:"GOAL_WINDOW_DAYS" envDefault:"30"`
	StreakMaxDays           int     `env:"STREAK_MAX_DAYS" envDefault:"365"`
	OverviewCacheTTLMinutes int     `env:"OVERVIEW_CACHE_TTL_MINUTES" envDefault:"5"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
