package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bnnadi/confida-service-sub000/internal/config"
	"github.com/bnnadi/confida-service-sub000/internal/db"
	"github.com/bnnadi/confida-service-sub000/internal/domain"
	"github.com/bnnadi/confida-service-sub000/internal/repository"
	"github.com/bnnadi/confida-service-sub000/internal/service"
)

// report es la salida completa del comando: overview más metas refrescadas.
type report struct {
	Overview service.PerformanceOverview `json:"overview"`
	Goals    []goalReport                `json:"goals"`
}

type goalReport struct {
	Goal     domain.Goal `json:"goal"`
	Progress float64     `json:"progress_percentage"`
}

func main() {
	userID := flag.String("user", "", "subject user id")
	days := flag.Int("days", 30, "trailing window in days")
	flag.Parse()

	if *userID == "" {
		log.Fatal("missing required -user flag")
	}

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	analyticsCfg := service.AnalyticsConfig{
		TrendChangeThreshold:   cfg.TrendChangeThreshold,
		TrendConfidenceDivisor: cfg.TrendConfidenceDivisor,
		GoalWindowDays:         cfg.GoalWindowDays,
		StreakMaxDays:          cfg.StreakMaxDays,
		OverviewCacheTTL:       time.Duration(cfg.OverviewCacheTTLMinutes) * time.Minute,
	}

	sessionRepo := repository.NewPgSessionRepository(pool)
	goalRepo := repository.NewPgGoalRepository(pool)

	cache := service.NewMemoryOverviewCache()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using memory cache", zap.Error(err))
		} else {
			cache = service.NewRedisOverviewCache(redisClient)
		}
		cancel()
	}

	calculator := service.NewMetricsCalculator()
	trendAnalyzer := service.NewTrendAnalyzer(analyticsCfg)
	heatmapBuilder := service.NewHeatmapBuilder()
	overviewSvc := service.NewOverviewService(sessionRepo, calculator, trendAnalyzer, heatmapBuilder, cache, analyticsCfg, logger)
	goalTracker := service.NewGoalTracker(goalRepo, sessionRepo, calculator, analyticsCfg, logger)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -*days)

	overview, err := overviewSvc.Overview(ctx, *userID, start, end)
	if err != nil {
		logger.Fatal("overview failed", zap.Error(err))
	}

	goals, err := goalTracker.ListByUser(ctx, *userID)
	if err != nil {
		logger.Fatal("goal listing failed", zap.Error(err))
	}

	out := report{Overview: overview, Goals: make([]goalReport, 0, len(goals))}
	for _, g := range goals {
		out.Goals = append(out.Goals, goalReport{Goal: g, Progress: g.ProgressPercentage()})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		logger.Fatal("encode report", zap.Error(err))
	}
}
