package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
	"github.com/bnnadi/confida-service-sub000/internal/repository"
)

var (
	ErrGoalNotFound          = errors.New("goal not found")
	ErrGoalInvalidType       = errors.New("goal type invalid")
	ErrGoalDimensionRequired = errors.New("goal dimension required")
)

var knownGoalTypes = map[string]struct{}{
	domain.GoalTypeScore:          {},
	domain.GoalTypeSessions:       {},
	domain.GoalTypeStreak:         {},
	domain.GoalTypeCompletionRate: {},
	domain.GoalTypeDimensionScore: {},
}

// CreateGoalParams son los datos de alta de una meta.
type CreateGoalParams struct {
	UserID      string
	Title       string
	Description string
	GoalType    string
	Dimension   string
	TargetValue float64
	TargetDate  *time.Time
}

// GoalTracker administra el ciclo de vida de metas y refresca su progreso
// desde las métricas vivas. El refresco es leer-calcular-escribir sobre un
// único registro; refrescos concurrentes de la misma meta pueden pisarse y
// el último escritor gana.
type GoalTracker struct {
	goals      repository.GoalRepository
	sessions   repository.SessionRepository
	calculator *MetricsCalculator
	cfg        AnalyticsConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewGoalTracker(
	goals repository.GoalRepository,
	sessions repository.SessionRepository,
	calculator *MetricsCalculator,
	cfg AnalyticsConfig,
	logger *zap.Logger,
) *GoalTracker {
	return &GoalTracker{
		goals:      goals,
		sessions:   sessions,
		calculator: calculator,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Create da de alta una meta en estado active con progreso cero.
func (t *GoalTracker) Create(ctx context.Context, params CreateGoalParams) (domain.Goal, error) {
	goalType := strings.TrimSpace(params.GoalType)
	if _, ok := knownGoalTypes[goalType]; !ok {
		return domain.Goal{}, ErrGoalInvalidType
	}
	if goalType == domain.GoalTypeDimensionScore && strings.TrimSpace(params.Dimension) == "" {
		return domain.Goal{}, ErrGoalDimensionRequired
	}

	now := t.now().UTC()
	goal := domain.Goal{
		ID:           uuid.NewString(),
		UserID:       params.UserID,
		Title:        params.Title,
		Description:  params.Description,
		GoalType:     goalType,
		Dimension:    strings.TrimSpace(params.Dimension),
		TargetValue:  params.TargetValue,
		CurrentValue: 0,
		TargetDate:   params.TargetDate,
		Status:       domain.GoalStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := t.goals.Upsert(ctx, goal); err != nil {
		return domain.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

// Get devuelve la meta del usuario, refrescando progreso si sigue activa.
// Las metas terminales se devuelven tal cual, nunca se refrescan.
func (t *GoalTracker) Get(ctx context.Context, userID, goalID string) (domain.Goal, error) {
	goal, err := t.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return domain.Goal{}, err
	}
	if goal.IsTerminal() {
		return goal, nil
	}
	if err := t.refresh(ctx, &goal); err != nil {
		return domain.Goal{}, err
	}
	return goal, nil
}

// ListByUser devuelve todas las metas del usuario, refrescando las activas.
func (t *GoalTracker) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	goals, err := t.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		if goals[i].IsTerminal() {
			continue
		}
		if err := t.refresh(ctx, &goals[i]); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

// Cancel pasa una meta activa a cancelled. Sobre una meta ya terminal es
// un no-op.
func (t *GoalTracker) Cancel(ctx context.Context, userID, goalID string) (domain.Goal, error) {
	goal, err := t.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return domain.Goal{}, err
	}
	if goal.IsTerminal() {
		return goal, nil
	}

	goal.Status = domain.GoalStatusCancelled
	goal.UpdatedAt = t.now().UTC()
	if err := t.goals.Upsert(ctx, goal); err != nil {
		return domain.Goal{}, fmt.Errorf("cancel goal: %w", err)
	}
	return goal, nil
}

func (t *GoalTracker) ownedGoal(ctx context.Context, userID, goalID string) (domain.Goal, error) {
	goal, err := t.goals.GetByID(ctx, goalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Goal{}, ErrGoalNotFound
	}
	if err != nil {
		return domain.Goal{}, err
	}
	if goal.UserID != userID {
		return domain.Goal{}, ErrGoalNotFound
	}
	return goal, nil
}

// refresh recalcula current_value sobre la ventana móvil y aplica las
// transiciones de estado. El chequeo de completado corre SIEMPRE antes que
// el de expiración: una meta cumplida en su fecha límite queda completed,
// no expired.
func (t *GoalTracker) refresh(ctx context.Context, goal *domain.Goal) error {
	now := t.now().UTC()

	value, known, err := t.currentValue(ctx, goal, now)
	if err != nil {
		return err
	}
	if known {
		goal.CurrentValue = value
	}

	if goal.CurrentValue >= goal.TargetValue {
		goal.Status = domain.GoalStatusCompleted
	} else if goal.TargetDate != nil && now.After(*goal.TargetDate) {
		goal.Status = domain.GoalStatusExpired
	}

	goal.UpdatedAt = now
	if err := t.goals.Upsert(ctx, *goal); err != nil {
		return fmt.Errorf("refresh goal: %w", err)
	}
	return nil
}

// currentValue resuelve el valor vigente según el tipo de meta. Un tipo
// desconocido deja el valor como está (no-op, no error).
func (t *GoalTracker) currentValue(ctx context.Context, goal *domain.Goal, now time.Time) (float64, bool, error) {
	windowStart := now.AddDate(0, 0, -t.cfg.GoalWindowDays)

	switch goal.GoalType {
	case domain.GoalTypeScore, domain.GoalTypeSessions, domain.GoalTypeCompletionRate, domain.GoalTypeDimensionScore:
		sessions, err := t.sessions.ListByUser(ctx, goal.UserID, windowStart, now)
		if err != nil {
			return 0, false, fmt.Errorf("list sessions: %w", err)
		}
		switch goal.GoalType {
		case domain.GoalTypeScore:
			return t.calculator.Calculate(sessions, "goal_window").AverageScore, true, nil
		case domain.GoalTypeSessions:
			return float64(len(sessions)), true, nil
		case domain.GoalTypeCompletionRate:
			return t.calculator.Calculate(sessions, "goal_window").CompletionRate, true, nil
		default:
			return t.calculator.dimensionAverages(sessions)[goal.Dimension], true, nil
		}
	case domain.GoalTypeStreak:
		streakStart := now.AddDate(0, 0, -t.cfg.StreakMaxDays)
		sessions, err := t.sessions.ListByUser(ctx, goal.UserID, streakStart, now)
		if err != nil {
			return 0, false, fmt.Errorf("list sessions: %w", err)
		}
		return float64(t.streakDays(sessions, now)), true, nil
	default:
		if t.logger != nil {
			t.logger.Warn("unknown goal type on refresh", zap.String("goal_id", goal.ID), zap.String("goal_type", goal.GoalType))
		}
		return 0, false, nil
	}
}

// streakDays cuenta días calendario consecutivos con al menos una sesión,
// caminando hacia atrás desde hoy, hasta el primer hueco o el tope.
func (t *GoalTracker) streakDays(sessions []domain.Session, now time.Time) int {
	days := map[string]struct{}{}
	for _, s := range sessions {
		days[s.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}
	}

	streak := 0
	day := now
	for i := 0; i < t.cfg.StreakMaxDays; i++ {
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
