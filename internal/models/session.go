package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus — производный статус тестовой сессии.
// Статус нигде не хранится: он всегда вычисляется из временного интервала.
type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Session — расписание проведения психотеста.
type Session struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code,omitempty"`
	TargetPosition  string    `json:"target_position,omitempty"`
	Location        string    `json:"location,omitempty"`
	MaxParticipants int       `json:"max_participants"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

// SessionInput — тело создания/обновления сессии.
type SessionInput struct {
	Name            string `json:"name"`
	TargetPosition  string `json:"target_position,omitempty"`
	Location        string `json:"location,omitempty"`
	MaxParticipants int    `json:"max_participants,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
}

// Status вычисляет статус сессии на момент now.
func (s Session) Status(now time.Time) SessionStatus {
	return StatusFromStrings(s.StartTime, s.EndTime, now)
}

// StatusOf — чистая функция вывода статуса из интервала:
// now < start -> draft; now > end -> completed; иначе active.
// Границы включаются в active.
func StatusOf(start, end, now time.Time) SessionStatus {
	switch {
	case now.Before(start):
		return SessionDraft
	case now.After(end):
		return SessionCompleted
	default:
		return SessionActive
	}
}

// StatusFromStrings — то же самое поверх RFC3339-строк из API.
// Неразбираемые даты дают draft: для отображения это безопасное значение.
func StatusFromStrings(start, end string, now time.Time) SessionStatus {
	st, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return SessionDraft
	}

	en, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return SessionDraft
	}

	return StatusOf(st, en, now)
}
