// Package telemetry обеспечивает наблюдаемость CLI.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики запросов к API
//
// Логи пишутся в stderr, чтобы stdout оставался чистым для данных
// (adafruit feeds list --json | jq .). CLI живёт секунды, поэтому
// метрики не отдаются по HTTP, а записываются в файл в формате
// textfile collector (node_exporter).
package telemetry
