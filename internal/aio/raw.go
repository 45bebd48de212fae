package aio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Ресурсы запоминают исходный JSON ответа: --json печатает ровно то,
// что вернул сервер (числовые id, поля вне структуры).
// Собранный вручную ресурс (raw пуст) кодируется по полям структуры.

func keepRaw(data []byte) json.RawMessage {
	return append(json.RawMessage(nil), bytes.TrimSpace(data)...)
}

// UnmarshalJSON декодирует feed и сохраняет исходное тело.
func (f *Feed) UnmarshalJSON(data []byte) error {
	type plain Feed
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = Feed(p)
	f.raw = keepRaw(data)
	return nil
}

// MarshalJSON возвращает исходный JSON, если он есть.
func (f Feed) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}
	type plain Feed
	return json.Marshal(plain(f))
}

// UnmarshalJSON декодирует точку данных. Координаты принимаются
// числом, строкой или null.
func (d *DataPoint) UnmarshalJSON(data []byte) error {
	type plain DataPoint
	var p struct {
		plain
		Lat json.RawMessage `json:"lat"`
		Lon json.RawMessage `json:"lon"`
		Ele json.RawMessage `json:"ele"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	point := DataPoint(p.plain)
	var err error
	if point.Lat, err = parseCoord("lat", p.Lat); err != nil {
		return err
	}
	if point.Lon, err = parseCoord("lon", p.Lon); err != nil {
		return err
	}
	if point.Ele, err = parseCoord("ele", p.Ele); err != nil {
		return err
	}

	point.raw = keepRaw(data)
	*d = point
	return nil
}

// MarshalJSON возвращает исходный JSON, если он есть.
func (d DataPoint) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	type plain DataPoint
	return json.Marshal(plain(d))
}

// UnmarshalJSON декодирует dashboard и сохраняет исходное тело.
func (d *Dashboard) UnmarshalJSON(data []byte) error {
	type plain Dashboard
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Dashboard(p)
	d.raw = keepRaw(data)
	return nil
}

// MarshalJSON возвращает исходный JSON, если он есть.
func (d Dashboard) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	type plain Dashboard
	return json.Marshal(plain(d))
}

// UnmarshalJSON декодирует пользователя и сохраняет исходное тело.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = User(p)
	u.raw = keepRaw(data)
	return nil
}

// MarshalJSON возвращает исходный JSON, если он есть.
func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	type plain User
	return json.Marshal(plain(u))
}

// parseCoord разбирает координату: число, строка с числом, "" или null.
func parseCoord(field string, data json.RawMessage) (*float64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number, got %q", field, s)
		}
		return &v, nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s must be a number: %w", field, err)
	}
	return &v, nil
}
