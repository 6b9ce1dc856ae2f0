package models

import (
	"time"

	"github.com/google/uuid"
)

// Role — роль пользователя в платформе.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// User — профиль аутентифицированного пользователя.
//
// Во время сессии авторитетна копия в памяти (session.Controller);
// копия в tokenstore служит только для восстановления после перезапуска.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"is_active"`
	EmailVerified  bool      `json:"email_verified"`
	ProfilePicture string    `json:"profile_picture_url,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}

// UserUpdate — частичное локальное обновление профиля.
// nil-поле означает «не менять».
type UserUpdate struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	ProfilePicture *string `json:"profile_picture_url,omitempty"`
}

// Apply возвращает копию пользователя с наложенными изменениями.
func (u User) Apply(upd UserUpdate) User {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.ProfilePicture != nil {
		u.ProfilePicture = *upd.ProfilePicture
	}

	return u
}
