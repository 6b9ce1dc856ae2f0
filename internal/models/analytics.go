package models

// AnalyticsOverview — агрегаты для административных карточек.
type AnalyticsOverview struct {
	TotalTests        int     `json:"total_tests"`
	TotalSessions     int     `json:"total_sessions"`
	ActiveSessions    int     `json:"active_sessions"`
	TotalParticipants int     `json:"total_participants"`
	CompletionRate    float64 `json:"completion_rate"`
}

// Dashboard — сводка участника: его сессии и прогресс.
type Dashboard struct {
	User           User      `json:"user"`
	Sessions       []Session `json:"sessions"`
	CompletedTests int       `json:"completed_tests"`
	PendingTests   int       `json:"pending_tests"`
}

// ListMeta — пагинация списочных ответов API.
type ListMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}
