package models

import (
	"time"

	"github.com/google/uuid"
)

// Test — психометрический тест (модуль сессии).
type Test struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	ModuleType     string    `json:"module_type"`
	TimeLimit      int       `json:"time_limit"` // минуты; 0 — без лимита
	TotalQuestions int       `json:"total_questions"`
	PassingScore   float64   `json:"passing_score,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}

// TestInput — тело создания/обновления теста.
type TestInput struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	ModuleType   string  `json:"module_type"`
	TimeLimit    int     `json:"time_limit,omitempty"`
	PassingScore float64 `json:"passing_score,omitempty"`
}

// Question — вопрос внутри теста.
type Question struct {
	ID            uuid.UUID `json:"id"`
	TestID        uuid.UUID `json:"test_id"`
	Text          string    `json:"question"`
	Type          string    `json:"question_type"` // multiple_choice | essay | rating_scale
	Options       []string  `json:"options,omitempty"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Sequence      int       `json:"sequence"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

// QuestionInput — тело создания/обновления вопроса.
type QuestionInput struct {
	Text          string   `json:"question"`
	Type          string   `json:"question_type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Sequence      int      `json:"sequence,omitempty"`
}
