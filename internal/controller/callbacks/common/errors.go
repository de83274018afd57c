package common

import (
	"errors"

	"github.com/Freeeeeet/slot_swapper/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
	ErrDialogExpired = errors.New("dialog data missing")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, ErrDialogExpired):
		return "❌ Данные диалога потеряны. Начните заново"
	}

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return "❌ Произошла ошибка"
	}

	switch svcErr.Kind {
	case service.KindValidation, service.KindInvalidOperation:
		return "❌ " + svcErr.Message
	case service.KindNotFound:
		return "❌ Не найдено: " + svcErr.Message
	case service.KindForbidden:
		return "⛔️ Нет доступа: " + svcErr.Message
	case service.KindConflict:
		return "⚠️ Конфликт: " + svcErr.Message + ". Обновите список и попробуйте снова"
	case service.KindInvalidState:
		return "⚠️ " + svcErr.Message
	default:
		return "❌ Произошла ошибка"
	}
}

// IsUserError reports errors caused by the user's input rather than the system.
func IsUserError(err error) bool {
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrDialogExpired) {
		return true
	}
	kind := service.KindOf(err)
	return kind != service.KindInternal && kind != ""
}
