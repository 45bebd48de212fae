package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/aio/internal/aio"
	"github.com/shaiso/aio/internal/config"
	"github.com/shaiso/aio/internal/telemetry"
)

// App — корневая команда CLI и её зависимости.
type App struct {
	version string
	stdout  io.Writer
	stderr  io.Writer

	// Глобальные флаги
	jsonOutput  bool
	configPath  string
	envFile     string
	metricsFile string
	timeout     time.Duration

	// Заполняются в PersistentPreRunE
	logger  *slog.Logger
	store   *config.Store
	metrics *telemetry.Metrics
}

// NewApp создаёт App с выводом в stdout/stderr.
func NewApp(version string, stdout, stderr io.Writer) *App {
	return &App{
		version: version,
		stdout:  stdout,
		stderr:  stderr,
		logger:  slog.Default(),
	}
}

// Run выполняет команду и возвращает код выхода.
func (a *App) Run(args []string) int {
	root := a.Command()
	root.SetArgs(positionalNumbers(root, args))

	err := root.ExecuteContext(context.Background())
	a.flushMetrics()

	if err != nil {
		NewOutput(false, a.stdout, a.stderr).Failure(err)
		return 1
	}
	return 0
}

// Command собирает дерево cobra-команд.
func (a *App) Command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "adafruit",
		Short:             "Adafruit IO CLI - IoT data platform from your terminal",
		Version:           a.version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	flags.StringVar(&a.configPath, "config", "", "Path to credentials file (default: user config dir)")
	flags.StringVar(&a.envFile, "env-file", "", "Load environment variables from file")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write request metrics to file (Prometheus text format)")
	flags.DurationVar(&a.timeout, "timeout", aio.DefaultTimeout, "HTTP request timeout")

	rootCmd.AddCommand(
		NewConfigCmd(a.storeFn, a.outputFn),
		NewUserCmd(a.clientFn, a.outputFn),
		NewFeedsCmd(a.clientFn, a.outputFn),
		NewDataCmd(a.clientFn, a.outputFn),
		NewDashboardsCmd(a.clientFn, a.outputFn),
	)

	return rootCmd
}

// setup загружает настройки после разбора флагов.
// Флаги имеют приоритет над переменными окружения.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadSettings(a.envFile)
	if err != nil {
		return err
	}

	a.logger = telemetry.SetupLogger(settings.LogLevel, settings.LogFormat, a.stderr)

	if !cmd.Flags().Changed("timeout") {
		a.timeout = settings.Timeout
	}
	if a.metricsFile == "" {
		a.metricsFile = settings.MetricsFile
	}
	if a.metricsFile != "" {
		a.metrics = telemetry.NewMetrics()
	}

	path := a.configPath
	if path == "" {
		path = settings.ConfigPath
	}
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	a.store = config.NewStore(path)

	a.logger.Debug("cli initialized", "command", cmd.CommandPath(), "config", path, "timeout", a.timeout)
	return nil
}

func (a *App) storeFn() *config.Store {
	return a.store
}

func (a *App) outputFn() *Output {
	return NewOutput(a.jsonOutput, a.stdout, a.stderr)
}

// clientFn проверяет учётные данные и создаёт клиент.
func (a *App) clientFn() (*aio.Client, error) {
	if !a.store.IsConfigured() {
		return nil, &aio.Error{Kind: aio.KindNotConfigured}
	}

	opts := []aio.Option{
		aio.WithTimeout(a.timeout),
		aio.WithLogger(a.logger),
	}
	if a.metrics != nil {
		opts = append(opts, aio.WithObserver(a.metrics))
	}
	return aio.NewClient(a.store, opts...), nil
}

func (a *App) flushMetrics() {
	if a.metrics == nil || a.metricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
		fmt.Fprintln(a.stderr, "Warning:", err)
	}
}
