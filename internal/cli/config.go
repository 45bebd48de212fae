package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/shaiso/aio/internal/config"
)

// NewConfigCmd создаёт группу команд для управления конфигурацией.
func NewConfigCmd(storeFn func() *config.Store, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(
		newConfigSetCmd(storeFn, outputFn),
		newConfigGetCmd(storeFn, outputFn),
		newConfigListCmd(storeFn, outputFn),
	)

	return cmd
}

func newConfigSetCmd(storeFn func() *config.Store, outputFn func() *Output) *cobra.Command {
	var apiKey, username, baseURL string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storeFn()
			out := outputFn()

			if apiKey == "" && username == "" && baseURL == "" {
				return errors.New("nothing to set: use --api-key, --username or --base-url")
			}
			if baseURL != "" {
				u, err := url.Parse(baseURL)
				if err != nil || u.Scheme == "" || u.Host == "" {
					return fmt.Errorf("invalid value for --base-url: %q", baseURL)
				}
			}

			creds, err := store.Set(config.Credentials{
				APIKey:   apiKey,
				Username: username,
				BaseURL:  baseURL,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Configuration updated: %s", store.Path()))
			if !creds.Complete() {
				out.Success("Configuration incomplete: both --api-key and --username are required")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Adafruit IO key")
	cmd.Flags().StringVar(&username, "username", "", "Adafruit IO username")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (optional)")

	return cmd
}

func newConfigGetCmd(storeFn func() *config.Store, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print a configuration value (apiKey, username, baseUrl)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storeFn()
			out := outputFn()

			value, ok := store.Value(args[0])
			if !ok {
				return fmt.Errorf("unknown config key %q (known: %s, %s, %s)",
					args[0], config.KeyAPIKey, config.KeyUsername, config.KeyBaseURL)
			}

			if out.JSONMode() {
				return out.JSON(map[string]string{args[0]: value})
			}
			out.Line(value)
			return nil
		},
	}
}

func newConfigListCmd(storeFn func() *config.Store, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"show"},
		Short:   "Show current configuration (API key masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storeFn()
			out := outputFn()

			creds := store.Get()
			masked := config.Credentials{
				APIKey:   mask(creds.APIKey),
				Username: orNA(creds.Username),
				BaseURL:  creds.BaseURL,
			}

			rows := [][]string{
				{config.KeyAPIKey, masked.APIKey},
				{config.KeyUsername, masked.Username},
				{config.KeyBaseURL, masked.BaseURL},
			}

			if !out.JSONMode() {
				out.Success(fmt.Sprintf("Config file: %s", store.Path()))
			}
			return out.Print([]string{"KEY", "VALUE"}, rows, masked)
		},
	}
}
