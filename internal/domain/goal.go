package domain

import "time"

const (
	GoalTypeScore          = "score"
	GoalTypeSessions       = "sessions"
	GoalTypeStreak         = "streak"
	GoalTypeCompletionRate = "completion_rate"
	GoalTypeDimensionScore = "dimension_score"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusExpired   = "expired"
	GoalStatusCancelled = "cancelled"
)

// Goal es una meta del usuario sobre una métrica de desempeño. El estado
// inicial es active; completed, expired y cancelled son terminales.
type Goal struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	GoalType     string     `json:"goal_type"`
	Dimension    string     `json:"dimension,omitempty"`
	TargetValue  float64    `json:"target_value"`
	CurrentValue float64    `json:"current_value"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsTerminal indica si la meta ya no admite refresco de progreso.
func (g *Goal) IsTerminal() bool {
	return g.Status != GoalStatusActive
}

// ProgressPercentage devuelve min(current/target*100, 100); 0 si no hay target.
func (g *Goal) ProgressPercentage() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	pct := g.CurrentValue / g.TargetValue * 100
	if pct > 100 {
		return 100
	}
	return pct
}
