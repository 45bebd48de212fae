package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/aio/internal/aio"
)

// NewUserCmd создаёт команду просмотра владельца API-ключа.
func NewUserCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "user",
		Short: "Show the account that owns the API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			user, err := client.GetUser(cmd.Context())
			if err != nil {
				return err
			}

			return out.Print(
				[]string{"ID", "USERNAME", "NAME", "TIME_ZONE"},
				[][]string{{string(user.ID), user.Username, orNA(user.Name), orNA(user.TimeZone)}},
				user,
			)
		},
	}
}
