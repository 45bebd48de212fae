// adafruit — инструмент командной строки для Adafruit IO:
// feeds, данные и dashboards через REST API.
//
// Использование:
//
//	adafruit [--json] [--config PATH] [--timeout D] <command> <subcommand> [flags]
//
// Команды:
//
//	config      Управление учётными данными
//	user        Владелец API-ключа
//	feeds       Управление feeds
//	data        Отправка и чтение данных
//	dashboards  Управление dashboards
package main

import (
	"os"

	"github.com/shaiso/aio/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	os.Exit(cli.NewApp(version, os.Stdout, os.Stderr).Run(os.Args[1:]))
}
