package aio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID — идентификатор ресурса. API отдаёт его то числом (feeds, dashboards),
// то строкой (data), поэтому принимаем оба варианта.
type ID string

// UnmarshalJSON принимает строку, число или null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Visibility — видимость feed.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility проверяет значение видимости.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(s)); v {
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	default:
		return "", fmt.Errorf("invalid visibility %q: must be public or private", s)
	}
}

// --- Ресурсы API ---

// Feed — именованный поток данных.
type Feed struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name"`
	Key         string     `json:"key"`
	Description string     `json:"description,omitempty"`
	Visibility  Visibility `json:"visibility,omitempty"`
	LastValue   string     `json:"last_value,omitempty"`
	UnitSymbol  string     `json:"unit_symbol,omitempty"`
	UnitType    string     `json:"unit_type,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
	UpdatedAt   string     `json:"updated_at,omitempty"`

	raw json.RawMessage
}

// DataPoint — одно значение feed с меткой времени и опциональной геопозицией.
type DataPoint struct {
	ID        ID       `json:"id"`
	Value     string   `json:"value"`
	FeedID    ID       `json:"feed_id,omitempty"`
	FeedKey   string   `json:"feed_key,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Ele       *float64 `json:"ele,omitempty"`

	raw json.RawMessage
}

// Dashboard — набор визуализаций.
type Dashboard struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`

	raw json.RawMessage
}

// User — владелец API-ключа.
type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	TimeZone  string `json:"time_zone,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`

	raw json.RawMessage
}

// --- Параметры запросов ---
//
// Опциональные поля — указатели: nil означает «не передавать»,
// ключ в теле запроса тогда отсутствует (а не равен null).

// CreateFeedRequest — создание feed.
//
//	Description → feed.description
//	Visibility  → feed.visibility (по умолчанию private)
type CreateFeedRequest struct {
	Name        string
	Description *string
	Visibility  Visibility
}

// SendOptions — опциональные поля точки данных.
//
//	Lat, Lon, Ele → lat, lon, ele
//	CreatedAt     → created_at (RFC3339, UTC)
type SendOptions struct {
	Lat       *float64
	Lon       *float64
	Ele       *float64
	CreatedAt *time.Time
}

// ListDataOptions — окно выборки данных.
//
//	Limit     → limit (по умолчанию DefaultDataLimit)
//	StartTime → start_time (RFC3339, UTC)
//	EndTime   → end_time (RFC3339, UTC)
type ListDataOptions struct {
	Limit     int
	StartTime *time.Time
	EndTime   *time.Time
}

// CreateDashboardRequest — создание dashboard.
//
//	Description → description
type CreateDashboardRequest struct {
	Name        string
	Description *string
}

// --- Тела запросов (wire) ---

type feedBody struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Visibility  Visibility `json:"visibility"`
}

type createFeedBody struct {
	Feed feedBody `json:"feed"`
}

type dataBody struct {
	Value     string   `json:"value"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Ele       *float64 `json:"ele,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

type dashboardBody struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
