package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultBaseURL — адрес Adafruit IO REST API v2.
const DefaultBaseURL = "https://io.adafruit.com/api/v2"

const (
	appDir   = "adafruit-cli"
	fileName = "config.json"
)

// Ключи конфигурации (совпадают с ключами в JSON-файле).
const (
	KeyAPIKey   = "apiKey"
	KeyUsername = "username"
	KeyBaseURL  = "baseUrl"
)

// Keys — все известные ключи в порядке вывода.
var Keys = []string{KeyAPIKey, KeyUsername, KeyBaseURL}

// Credentials — учётные данные аккаунта Adafruit IO.
type Credentials struct {
	APIKey   string `json:"apiKey" mapstructure:"apiKey"`
	Username string `json:"username" mapstructure:"username"`
	BaseURL  string `json:"baseUrl" mapstructure:"baseUrl"`
}

// Complete сообщает, заданы ли ключ и имя пользователя.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.Username != ""
}

// Store — файловое хранилище учётных данных.
//
// Межпроцессной блокировки нет: CLI однопользовательский.
type Store struct {
	path string
}

// DefaultPath возвращает путь к файлу в пользовательской директории конфигурации.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// NewStore создаёт Store поверх файла path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path возвращает путь к файлу конфигурации.
func (s *Store) Path() string {
	return s.path
}

// Get возвращает сохранённые учётные данные.
// Если файла нет или он повреждён — значения по умолчанию (не настроено).
func (s *Store) Get() Credentials {
	defaults := Credentials{BaseURL: DefaultBaseURL}

	var creds Credentials
	if err := s.read().Unmarshal(&creds); err != nil {
		slog.Debug("config decode failed, using defaults", "path", s.path, "error", err)
		return defaults
	}
	if creds.BaseURL == "" {
		creds.BaseURL = DefaultBaseURL
	}
	return creds
}

// Set сливает непустые поля partial с текущими значениями и сохраняет результат.
func (s *Store) Set(partial Credentials) (Credentials, error) {
	merged := s.Get()
	if partial.APIKey != "" {
		merged.APIKey = partial.APIKey
	}
	if partial.Username != "" {
		merged.Username = partial.Username
	}
	if partial.BaseURL != "" {
		merged.BaseURL = partial.BaseURL
	}

	if err := s.write(merged); err != nil {
		return merged, err
	}
	return merged, nil
}

// IsConfigured сообщает, заданы ли apiKey и username.
func (s *Store) IsConfigured() bool {
	return s.Get().Complete()
}

// Value возвращает значение по ключу (без учёта регистра).
// Для неизвестного ключа ok=false.
func (s *Store) Value(key string) (value string, ok bool) {
	canonical, known := canonicalKey(key)
	if !known {
		return "", false
	}

	creds := s.Get()
	switch canonical {
	case KeyAPIKey:
		return creds.APIKey, true
	case KeyUsername:
		return creds.Username, true
	default:
		return creds.BaseURL, true
	}
}

func canonicalKey(key string) (string, bool) {
	for _, k := range Keys {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}

// read загружает файл через viper. Ошибки чтения не фатальны.
func (s *Store) read() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config unreadable, using defaults", "path", s.path, "error", err)
	}
	return v
}

// write сохраняет данные атомарно: временный файл + rename.
// viper не используется для записи, т.к. он приводит ключи к нижнему регистру.
func (s *Store) write(creds Credentials) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
