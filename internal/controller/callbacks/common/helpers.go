package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// AnswerCallback гасит "часики" на кнопке, text показывается всплывающей подсказкой
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	answer(ctx, b, callbackID, text, false)
}

// AnswerCallbackAlert отвечает модальным окном, которое нужно закрыть
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	answer(ctx, b, callbackID, text, true)
}

func answer(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	// Telegram limits callback answers to 200 characters
	if runes := []rune(text); len(runes) > 200 {
		text = string(runes[:199]) + "…"
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// GetMessageFromCallback returns the message the pressed button belongs to; nil when it is inaccessible.
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	return callback.Message.Message
}

// ParseIDFromCallback extracts the uuid after the prefix: "swap_accept:6f1c...e2".
func ParseIDFromCallback(data string) (uuid.UUID, error) {
	_, raw, ok := strings.Cut(data, ":")
	if !ok || raw == "" {
		return uuid.Nil, ErrInvalidFormat
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidFormat, data)
	}
	return id, nil
}

// CallbackData joins a prefix from data.go with an id.
func CallbackData(prefix string, id uuid.UUID) string {
	return prefix + id.String()
}
