package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/psikotes-app/go-client/internal/models"
)

type testListResponse struct {
	Tests []models.Test   `json:"tests"`
	Meta  models.ListMeta `json:"meta"`
}

type questionListResponse struct {
	Questions []models.Question `json:"questions"`
	Meta      models.ListMeta   `json:"meta"`
}

// Tests возвращает страницу тестов.
func (s *Service) Tests(ctx context.Context, p Page) ([]models.Test, models.ListMeta, error) {
	const op = "service.tests.Tests"

	var resp testListResponse
	if err := s.api.Get(ctx, "/tests"+p.query(), &resp); err != nil {
		return nil, models.ListMeta{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Tests, resp.Meta, nil
}

// TestByID возвращает тест по идентификатору.
func (s *Service) TestByID(ctx context.Context, id uuid.UUID) (*models.Test, error) {
	const op = "service.tests.TestByID"

	var t models.Test
	if err := s.api.Get(ctx, "/tests/"+id.String(), &t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

// CreateTest создаёт тест.
func (s *Service) CreateTest(ctx context.Context, in models.TestInput) (*models.Test, error) {
	const op = "service.tests.CreateTest"

	var t models.Test
	if err := s.api.Post(ctx, "/tests", in, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

// UpdateTest обновляет тест целиком.
func (s *Service) UpdateTest(ctx context.Context, id uuid.UUID, in models.TestInput) (*models.Test, error) {
	const op = "service.tests.UpdateTest"

	var t models.Test
	if err := s.api.Put(ctx, "/tests/"+id.String(), in, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

// DeleteTest удаляет тест.
func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	const op = "service.tests.DeleteTest"

	if err := s.api.Delete(ctx, "/tests/"+id.String(), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Questions возвращает страницу вопросов теста.
func (s *Service) Questions(ctx context.Context, testID uuid.UUID, p Page) ([]models.Question, models.ListMeta, error) {
	const op = "service.tests.Questions"

	var resp questionListResponse
	if err := s.api.Get(ctx, "/tests/"+testID.String()+"/questions"+p.query(), &resp); err != nil {
		return nil, models.ListMeta{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Questions, resp.Meta, nil
}

// CreateQuestion добавляет вопрос в тест.
func (s *Service) CreateQuestion(ctx context.Context, testID uuid.UUID, in models.QuestionInput) (*models.Question, error) {
	const op = "service.tests.CreateQuestion"

	var q models.Question
	if err := s.api.Post(ctx, "/tests/"+testID.String()+"/questions", in, &q); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &q, nil
}

// UpdateQuestion обновляет вопрос.
func (s *Service) UpdateQuestion(ctx context.Context, testID, questionID uuid.UUID, in models.QuestionInput) (*models.Question, error) {
	const op = "service.tests.UpdateQuestion"

	var q models.Question
	if err := s.api.Put(ctx, "/tests/"+testID.String()+"/questions/"+questionID.String(), in, &q); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &q, nil
}

// DeleteQuestion удаляет вопрос.
func (s *Service) DeleteQuestion(ctx context.Context, testID, questionID uuid.UUID) error {
	const op = "service.tests.DeleteQuestion"

	if err := s.api.Delete(ctx, "/tests/"+testID.String()+"/questions/"+questionID.String(), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
