// Package config хранит настройки CLI.
//
// Включает:
//   - store.go — Store: учётные данные Adafruit IO (apiKey, username, baseUrl)
//     в JSON-файле в пользовательской директории конфигурации
//   - settings.go — Settings: параметры запуска из переменных окружения
//     (уровень логирования, таймаут HTTP, файл метрик)
//
// Store читается через viper, запись идёт атомарно через временный файл.
// Повреждённый файл не ломает CLI: он трактуется как «не настроено».
package config
