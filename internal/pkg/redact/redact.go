// redact — утилиты для безопасного вывода чувствительных данных в логи.
// Токены, пароли и телефоны никогда не пишутся в лог «как есть».
package redact

import "strings"

// Email маскирует локальную часть адреса, сохраняя домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Phone оставляет видимыми только последние две цифры номера.
func Phone(s string) string {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	if digits < 4 {
		return "***"
	}

	runes := []rune(s)
	return "***" + string(runes[len(runes)-2:])
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
