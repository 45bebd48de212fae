package aio

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind — категория ошибки клиента.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotConfigured
	KindNetworkUnreachable
	KindAuthenticationFailed
	KindForbidden
	KindNotFound
	KindRateLimited
	KindAPI
)

// String возвращает имя категории (используется как label метрик).
func (k Kind) String() string {
	switch k {
	case KindNotConfigured:
		return "not_configured"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindAPI:
		return "api_error"
	default:
		return "unknown"
	}
}

func (k Kind) defaultMessage() string {
	switch k {
	case KindNotConfigured:
		return "Adafruit IO credentials not configured. Run: adafruit config set --api-key YOUR_KEY --username YOUR_USERNAME"
	case KindNetworkUnreachable:
		return "No response from Adafruit IO API. Check your internet connection"
	case KindAuthenticationFailed:
		return "Authentication failed. Check your Adafruit IO API key"
	case KindForbidden:
		return "Access forbidden. Check your API key permissions"
	case KindNotFound:
		return "Resource not found on Adafruit IO"
	case KindRateLimited:
		return "Rate limit exceeded. Free plan allows 30 data points/minute"
	case KindAPI:
		return "API error"
	default:
		return "Unexpected error"
	}
}

// Error — нормализованная ошибка клиента.
type Error struct {
	Kind Kind

	// Status — HTTP-код, если ответ был получен.
	Status int

	// Message — текст от сервера (для KindAPI) или переопределение
	// стандартного сообщения категории.
	Message string

	// Err — исходная причина.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.defaultMessage()
	}
	if e.Kind == KindAPI {
		msg = fmt.Sprintf("API error (%d): %s", e.Status, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по Kind, чтобы работал errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel-ошибки для errors.Is. Не возвращаются напрямую.
var (
	ErrNotConfigured        = &Error{Kind: KindNotConfigured}
	ErrNetworkUnreachable   = &Error{Kind: KindNetworkUnreachable}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrRateLimited          = &Error{Kind: KindRateLimited}
	ErrAPI                  = &Error{Kind: KindAPI}
	ErrUnknown              = &Error{Kind: KindUnknown}
)

// Ошибки аргументов (до обращения к сети).
var (
	// ErrMissingArgument — не передан обязательный ключ или идентификатор.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrNilValue — значение точки данных не задано.
	ErrNilValue = errors.New("value must not be nil")
)

// KindOf возвращает категорию ошибки. Ошибки не из этого пакета — KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// normalize сводит отказ транспортного слоя к *Error.
func normalize(err error) *Error {
	var (
		transportErr *TransportError
		statusErr    *StatusError
		decodeErr    *DecodeError
		clientErr    *Error
	)

	switch {
	case errors.As(err, &clientErr):
		return clientErr
	case errors.As(err, &transportErr):
		return &Error{Kind: KindNetworkUnreachable, Err: transportErr.Err}
	case errors.As(err, &statusErr):
		return fromStatus(statusErr)
	case errors.As(err, &decodeErr):
		return &Error{Kind: KindUnknown, Err: decodeErr}
	default:
		return &Error{Kind: KindUnknown, Err: err}
	}
}

func fromStatus(se *StatusError) *Error {
	switch se.StatusCode {
	case http.StatusUnauthorized:
		return &Error{Kind: KindAuthenticationFailed, Status: se.StatusCode}
	case http.StatusForbidden:
		return &Error{Kind: KindForbidden, Status: se.StatusCode}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: se.StatusCode}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Status: se.StatusCode}
	default:
		return &Error{
			Kind:    KindAPI,
			Status:  se.StatusCode,
			Message: errorMessage(se.StatusCode, se.Body),
		}
	}
}

// errorMessage достаёт текст ошибки из поля error или message JSON-тела.
// Если тело не JSON или полей нет — возвращает тело как есть.
func errorMessage(status int, body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return http.StatusText(status)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, field := range []string{"error", "message"} {
			if msg := messageField(payload[field]); msg != "" {
				return msg
			}
		}
	}
	return raw
}

// messageField понимает строку или массив строк (API отдаёт оба варианта).
func messageField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
