package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/psikotes-app/go-client/internal/models"
	"github.com/psikotes-app/go-client/internal/validate"
)

type sessionListResponse struct {
	Sessions []models.Session `json:"sessions"`
	Meta     models.ListMeta  `json:"meta"`
}

// Sessions возвращает страницу тестовых сессий.
func (s *Service) Sessions(ctx context.Context, p Page) ([]models.Session, models.ListMeta, error) {
	const op = "service.sessions.Sessions"

	var resp sessionListResponse
	if err := s.api.Get(ctx, "/sessions"+p.query(), &resp); err != nil {
		return nil, models.ListMeta{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Sessions, resp.Meta, nil
}

// SessionByID возвращает сессию по идентификатору.
func (s *Service) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	const op = "service.sessions.SessionByID"

	var sess models.Session
	if err := s.api.Get(ctx, "/sessions/"+id.String(), &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, nil
}

// CreateSession планирует новую сессию. Расписание проверяется локально
// до обращения к сети.
func (s *Service) CreateSession(ctx context.Context, in models.SessionInput) (*models.Session, error) {
	const op = "service.sessions.CreateSession"

	if err := validate.SessionSchedule(in.Name, in.StartTime, in.EndTime); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sess models.Session
	if err := s.api.Post(ctx, "/sessions", in, &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, nil
}

// UpdateSession переносит/правит сессию; валидация та же, что при создании.
func (s *Service) UpdateSession(ctx context.Context, id uuid.UUID, in models.SessionInput) (*models.Session, error) {
	const op = "service.sessions.UpdateSession"

	if err := validate.SessionSchedule(in.Name, in.StartTime, in.EndTime); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sess models.Session
	if err := s.api.Put(ctx, "/sessions/"+id.String(), in, &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, nil
}

// DeleteSession удаляет сессию.
func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	const op = "service.sessions.DeleteSession"

	if err := s.api.Delete(ctx, "/sessions/"+id.String(), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ParticipantDashboard — сводка участника: его сессии и прогресс.
func (s *Service) ParticipantDashboard(ctx context.Context) (*models.Dashboard, error) {
	const op = "service.sessions.ParticipantDashboard"

	var d models.Dashboard
	if err := s.api.Get(ctx, "/participant/dashboard", &d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &d, nil
}
