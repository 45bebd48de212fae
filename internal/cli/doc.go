// Package cli реализует инструмент командной строки adafruit.
//
// # Обзор
//
// CLI — клиентская утилита для Adafruit IO. Бизнес-логики в командах нет:
// они разбирают аргументы, вызывают aio.Client и выводят результат.
// Каждая команда делает ровно один вызов API.
//
// # Ключевые компоненты
//
// ## App
//
// Корневая команда и общие зависимости: настройки из окружения,
// логгер, хранилище учётных данных, метрики. Run возвращает код выхода:
// 0 — успех, 1 — любая обработанная ошибка.
//
//	os.Exit(cli.NewApp(version, os.Stdout, os.Stderr).Run(os.Args[1:]))
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.Encoder с отступами) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: adafruit feeds list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - config: set, get, list, show
//   - user
//   - feeds: list, get, create
//   - data: send, get, list
//   - dashboards: list, get, create
//
// Каждая группа создаётся через фабричную функцию (NewFeedsCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags. clientFn сначала
// проверяет учётные данные и без них сразу возвращает ErrNotConfigured.
package cli
