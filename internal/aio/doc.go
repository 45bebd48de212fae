// Package aio реализует HTTP-клиент для Adafruit IO REST API v2.
//
// # Обзор
//
// Client переводит типизированные операции (список feeds, отправка данных,
// dashboards) в один аутентифицированный HTTP-запрос и обратно
// в типизированный результат. Состояния клиент не хранит: учётные данные
// читаются из CredentialSource при каждом вызове.
//
//	client := aio.NewClient(store, aio.WithTimeout(10*time.Second))
//	feeds, err := client.ListFeeds(ctx)
//
// # Аутентификация
//
// Каждый запрос несёт заголовок X-AIO-Key и адресуется в пространство
// аккаунта: /{username}/feeds/... Без apiKey или username вызов сразу
// завершается ErrNotConfigured, запрос в сеть не уходит.
//
// # Ошибки
//
// Транспортный слой (transport.go) создаёт один из трёх вариантов отказа:
//   - TransportError — запрос отправлен, ответа нет (DNS, соединение, таймаут)
//   - StatusError — получен ответ с не-2xx статусом
//   - DecodeError — тело ответа не разбирается
//
// normalize сводит их к *Error с Kind из фиксированной таксономии:
// NotConfigured, NetworkUnreachable, AuthenticationFailed, Forbidden,
// NotFound, RateLimited, API, Unknown. Проверка — через errors.Is
// с sentinel-ошибками (ErrNotFound и т.д.).
//
// Повторов нет: один неудачный вызов даёт одну ошибку.
//
// # Значения
//
// value в данных всегда передаётся строкой. FormatValue приводит числа
// и bool к строке так же, как это делает JavaScript String(v).
package aio
