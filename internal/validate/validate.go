// validate — клиентская валидация форм. Отклонённый ввод никогда
// не доходит до сети: ошибки этого пакета возвращаются вызывающему
// до построения HTTP-запроса.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	// ErrInvalidEmail — identifier администратора не является e-mail.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyPassword — пароль пустой.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidPhone — номер телефона не проходит нормализацию.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrEmptySessionName — имя сессии пустое.
	ErrEmptySessionName = errors.New("session name is empty")

	// ErrInvalidSchedule — конец интервала не позже начала.
	ErrInvalidSchedule = errors.New("session end must be after start")
)

// AdminLogin проверяет форму входа администратора и возвращает
// нормализованный identifier (обрезанный, в нижнем регистре).
func AdminLogin(identifier, password string) (string, error) {
	const op = "validate.AdminLogin"

	ident := strings.TrimSpace(identifier)
	if ident == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(ident); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	return strings.ToLower(ident), nil
}

// ParticipantPhone нормализует индонезийский номер к виду +62XXXXXXXXXX.
// Принимаются префиксы +62, 62 и 0; разделители (пробелы, дефисы, скобки)
// отбрасываются. Национальная часть — от 8 до 12 цифр.
func ParticipantPhone(raw string) (string, error) {
	const op = "validate.ParticipantPhone"

	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && digits.Len() == 0:
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// разделители допустимы
		default:
			return "", fmt.Errorf("%s: %w", op, ErrInvalidPhone)
		}
	}

	s := digits.String()
	switch {
	case strings.HasPrefix(s, "+62"):
		s = s[3:]
	case strings.HasPrefix(s, "62"):
		s = s[2:]
	case strings.HasPrefix(s, "0"):
		s = s[1:]
	default:
		return "", fmt.Errorf("%s: %w", op, ErrInvalidPhone)
	}

	if len(s) < 8 || len(s) > 12 || strings.HasPrefix(s, "0") {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidPhone)
	}

	return "+62" + s, nil
}

// SessionSchedule проверяет форму планирования сессии.
// Времена — RFC3339; конец должен быть строго позже начала.
func SessionSchedule(name, start, end string) error {
	const op = "validate.SessionSchedule"

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptySessionName)
	}

	st, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidSchedule)
	}

	en, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidSchedule)
	}

	if !en.After(st) {
		return fmt.Errorf("%s: %w", op, ErrInvalidSchedule)
	}

	return nil
}
