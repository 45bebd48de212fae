package aio

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatValue приводит значение точки данных к строке.
//
// API принимает value только строкой. Числа форматируются как в
// JavaScript String(v): 42 → "42", 4.50 → "4.5", 1e21 → "1e+21".
func FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", ErrNilValue
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return formatFloat(float64(val), 32), nil
	case float64:
		return formatFloat(val, 64), nil
	case json.Number:
		return val.String(), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return fmt.Sprint(val), nil
	}
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		// Go пишет экспоненту минимум двумя цифрами (1e-07), JS — без нуля (1e-7).
		s := strconv.FormatFloat(f, 'e', -1, bitSize)
		return strings.Replace(strings.Replace(s, "e-0", "e-", 1), "e+0", "e+", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}
