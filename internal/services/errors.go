package services

import (
	"errors"
	"fmt"

	"vkmod/internal/models"
	"vkmod/internal/repository"
	"vkmod/internal/utils"
)

var (
	ErrValidation         = errors.New("некорректные данные")
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrLoginLocked        = errors.New("слишком много неудачных попыток входа, попробуйте позже")
	ErrUserInactive       = errors.New("пользователь заблокирован")
	ErrInvalidToken       = utils.ErrInvalidToken
	ErrAlreadyRunning     = errors.New("задача уже выполняется")
	ErrUnknownSetting     = errors.New("неизвестная настройка")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func pageOf[T any](items []T, total, limit, offset int) *models.Page[T] {
	if items == nil {
		items = []T{}
	}
	limit, offset = repository.ClampPage(limit, offset)
	return &models.Page[T]{Items: items, Total: total, Limit: limit, Offset: offset}
}
