package aio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseSize — ограничение на размер тела ответа.
const maxResponseSize = 10 << 20

// TransportError — запрос отправлен, но ответ не получен.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError — получен ответ с не-2xx статусом.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// DecodeError — тело ответа не удалось прочитать или разобрать.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// newRequest собирает HTTP-запрос с JSON-телом.
func newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send выполняет запрос. Возвращает тело 2xx-ответа,
// *TransportError или *StatusError.
func send(hc *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		// Ответ уже получен: обрыв тела — не сетевая недоступность.
		return nil, resp.StatusCode, &DecodeError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, resp.StatusCode, nil
}

// decode разбирает JSON-тело в result. Ошибка — всегда *DecodeError.
func decode(body []byte, result any) error {
	if result == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &DecodeError{Err: fmt.Errorf("empty response body"), Body: body}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{Err: err, Body: body}
	}
	return nil
}
