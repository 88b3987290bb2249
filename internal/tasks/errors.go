package tasks

import (
	"errors"
	"fmt"

	"vkmod/internal/repository"
	"vkmod/internal/services"
	"vkmod/internal/vk"
)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как неустранимую: задача сразу уходит в failed.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Retryable решает, стоит ли повторять задачу.
// Ошибки VK API классифицирует vk.IsRetryable, занятая блокировка и прочие сбои повторяются.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case IsPermanent(err),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, services.ErrValidation):
		return false
	case errors.Is(err, services.ErrAlreadyRunning):
		return true
	case vk.IsVKError(err):
		return vk.IsRetryable(err)
	}
	return true
}

// errorCode возвращает код для отчёта об ошибке: vk_<код> для ошибок VK API, иначе task_<тип>.
func errorCode(taskType string, err error) string {
	if code := vk.Code(err); code != 0 {
		return fmt.Sprintf("vk_%d", code)
	}
	if errors.Is(err, vk.ErrTransport) {
		return "vk_transport"
	}
	return "task_" + taskType
}
