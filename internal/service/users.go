package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/psikotes-app/go-client/internal/models"
)

type userListResponse struct {
	Users []models.User   `json:"users"`
	Meta  models.ListMeta `json:"meta"`
}

// UserInput — тело создания/обновления пользователя администратором.
type UserInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	Role     models.Role `json:"role"`
	IsActive bool        `json:"is_active"`
}

// Users возвращает страницу пользователей.
func (s *Service) Users(ctx context.Context, p Page) ([]models.User, models.ListMeta, error) {
	const op = "service.users.Users"

	var resp userListResponse
	if err := s.api.Get(ctx, "/users"+p.query(), &resp); err != nil {
		return nil, models.ListMeta{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Users, resp.Meta, nil
}

// UserByID возвращает пользователя по идентификатору.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.UserByID"

	var u models.User
	if err := s.api.Get(ctx, "/users/"+id.String(), &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

// CreateUser создаёт пользователя.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	const op = "service.users.CreateUser"

	var u models.User
	if err := s.api.Post(ctx, "/users", in, &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

// UpdateUser обновляет пользователя.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UserInput) (*models.User, error) {
	const op = "service.users.UpdateUser"

	var u models.User
	if err := s.api.Put(ctx, "/users/"+id.String(), in, &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

// DeleteUser удаляет пользователя.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "service.users.DeleteUser"

	if err := s.api.Delete(ctx, "/users/"+id.String(), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
