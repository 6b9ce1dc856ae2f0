package service

import (
	"context"
	"fmt"

	"github.com/psikotes-app/go-client/internal/models"
)

// AnalyticsOverview возвращает агрегаты для административных карточек.
func (s *Service) AnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error) {
	const op = "service.analytics.AnalyticsOverview"

	var a models.AnalyticsOverview
	if err := s.api.Get(ctx, "/analytics/overview", &a); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &a, nil
}
