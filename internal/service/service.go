// service — типизированные операции над ресурсами платформы поверх
// API-клиента: тесты, вопросы, сессии, пользователи, аналитика.
// Авторизацией и refresh пакет не занимается — это забота apiclient;
// здесь только пути, тела и формы ответов.
package service

import (
	"fmt"
	"net/url"

	"github.com/psikotes-app/go-client/internal/apiclient"
)

// Service агрегирует ресурсные операции. Экземпляр безопасен для
// конкурентного использования.
type Service struct {
	api *apiclient.Client
}

// New создаёт сервис поверх клиента.
func New(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// Page — параметры пагинации списочных запросов.
type Page struct {
	Page    int
	PerPage int
}

// query собирает строку запроса пагинации ("" при нулевых значениях).
func (p Page) query() string {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", fmt.Sprint(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", fmt.Sprint(p.PerPage))
	}

	if len(v) == 0 {
		return ""
	}

	return "?" + v.Encode()
}
