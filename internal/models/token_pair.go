package models

import "time"

// TokenPair — пара токенов, выдаваемая бэкендом при входе и при refresh.
//
// Описание:
//   - AccessToken — короткоживущий JWT, подставляется в Authorization;
//   - RefreshToken — долгоживущий секрет, предъявляется только /auth/refresh;
//   - ExpiresAt — момент истечения access-токена; сервер обязуется держать его
//     согласованным с ExpiresIn на момент выдачи.
//
// Пара принадлежит tokenstore и заменяется целиком при каждом login/refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}
