package vk

import (
	"errors"
	"fmt"
)

// Классы ошибок VK API. Конкретная ошибка — *APIError, errors.Is сопоставляет её с классом.
var (
	ErrAPI             = errors.New("vk: api error")
	ErrUnknown         = errors.New("vk: unknown error")
	ErrAuthFailed      = errors.New("vk: authorization failed")
	ErrTooManyRequests = errors.New("vk: too many requests per second")
	ErrAccessDenied    = errors.New("vk: access denied")
	ErrFloodControl    = errors.New("vk: flood control")
	ErrServer          = errors.New("vk: internal server error")
	ErrCaptcha         = errors.New("vk: captcha needed")
	ErrUserDeleted     = errors.New("vk: user was deleted or banned")
	ErrRateLimit       = errors.New("vk: rate limit reached")
	ErrInvalidParam    = errors.New("vk: invalid parameter")
	ErrNotFound        = errors.New("vk: not found")
	ErrTransport       = errors.New("vk: transport error")
)

// Коды ошибок VK API, см. https://dev.vk.com/ru/reference/errors
const (
	CodeUnknown           = 1
	CodeAuthFailed        = 5
	CodeTooManyRequests   = 6
	CodePermissionDenied  = 7
	CodeFloodControl      = 9
	CodeInternalServer    = 10
	CodeCaptcha           = 14
	CodeAccessDenied      = 15
	CodeUserDeleted       = 18
	CodeRateLimit         = 29
	CodePrivateProfile    = 30
	CodeInvalidParam      = 100
	CodeNotFound          = 104
	CodeInvalidUserID     = 113
	CodeGroupAccessDenied = 203
	CodeCommentsDenied    = 212
)

var codeKinds = map[int]error{
	CodeUnknown:           ErrUnknown,
	CodeAuthFailed:        ErrAuthFailed,
	CodeTooManyRequests:   ErrTooManyRequests,
	CodePermissionDenied:  ErrAccessDenied,
	CodeFloodControl:      ErrFloodControl,
	CodeInternalServer:    ErrServer,
	CodeCaptcha:           ErrCaptcha,
	CodeAccessDenied:      ErrAccessDenied,
	CodeUserDeleted:       ErrUserDeleted,
	CodeRateLimit:         ErrRateLimit,
	CodePrivateProfile:    ErrAccessDenied,
	CodeInvalidParam:      ErrInvalidParam,
	CodeNotFound:          ErrNotFound,
	CodeInvalidUserID:     ErrInvalidParam,
	CodeGroupAccessDenied: ErrAccessDenied,
	CodeCommentsDenied:    ErrAccessDenied,
}

// KindOf возвращает класс ошибки для кода VK.
func KindOf(code int) error {
	if kind, ok := codeKinds[code]; ok {
		return kind
	}
	return ErrAPI
}

type APIError struct {
	Code    int
	Message string
	Method  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk %s: error %d: %s", e.Method, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return KindOf(e.Code) }

// IsRetryable сообщает, имеет ли смысл повторить запрос с паузой.
// Flood control и лимит запросов к методу за сутки повтором не лечатся.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrTooManyRequests),
		errors.Is(err, ErrServer),
		errors.Is(err, ErrUnknown),
		errors.Is(err, ErrTransport):
		return true
	}
	return false
}

// Code достаёт код VK из цепочки ошибок (0, если это не ошибка VK API).
func Code(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

var kinds = []error{
	ErrAPI, ErrUnknown, ErrAuthFailed, ErrTooManyRequests, ErrAccessDenied, ErrFloodControl,
	ErrServer, ErrCaptcha, ErrUserDeleted, ErrRateLimit, ErrInvalidParam, ErrNotFound, ErrTransport,
}

// IsVKError сообщает, пришла ли ошибка из VK API или транспорта до него.
func IsVKError(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
