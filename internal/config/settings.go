package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Settings — параметры запуска CLI из переменных окружения.
type Settings struct {
	// LogLevel: DEBUG, INFO, WARN, ERROR.
	LogLevel string `env:"LOG_LEVEL" env-default:"WARN"`

	// LogFormat: "text" или "json".
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	// Timeout — таймаут одного HTTP-запроса к API.
	Timeout time.Duration `env:"AIO_TIMEOUT" env-default:"30s"`

	// MetricsFile — куда записать метрики запросов (textfile collector).
	MetricsFile string `env:"AIO_METRICS_FILE"`

	// ConfigPath переопределяет путь к файлу учётных данных.
	ConfigPath string `env:"AIO_CONFIG"`
}

// LoadSettings читает Settings из окружения.
// Если envFile не пустой, сначала загружает его через godotenv
// (уже заданные переменные не перезаписываются).
func LoadSettings(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var s Settings
	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &s, nil
}
