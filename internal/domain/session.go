package domain

import (
	"encoding/json"
	"time"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusAbandoned = "abandoned"
)

// Session es una sesión de entrevista registrada por el usuario. El motor
// de analítica es solo-lectura sobre sesiones; quien las muta es el proceso
// que registra el progreso.
type Session struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Role           string          `json:"role,omitempty"`
	Status         string          `json:"status"`
	TotalItems     int             `json:"total_items"`
	CompletedItems int             `json:"completed_items"`
	ScorePayload   json.RawMessage `json:"score_payload,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Answer pertenece a un item de la sesión y trae su propio payload de puntaje.
type Answer struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	QuestionID   string          `json:"question_id"`
	Content      string          `json:"content,omitempty"`
	ScorePayload json.RawMessage `json:"score_payload,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Question aporta metadatos de categoría y dificultad de cada item.
type Question struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Position   int    `json:"position"`
}
