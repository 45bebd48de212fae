package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/aio/internal/aio"
)

var feedHeaders = []string{"KEY", "NAME", "VISIBILITY", "LAST_VALUE", "UPDATED"}

func feedRow(f aio.Feed) []string {
	return []string{f.Key, f.Name, string(f.Visibility), orNA(f.LastValue), f.UpdatedAt}
}

// NewFeedsCmd создаёт группу команд для управления feeds.
func NewFeedsCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Manage feeds",
	}

	cmd.AddCommand(
		newFeedsListCmd(clientFn, outputFn),
		newFeedsGetCmd(clientFn, outputFn),
		newFeedsCreateCmd(clientFn, outputFn),
	)

	return cmd
}

func newFeedsListCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			feeds, err := client.ListFeeds(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(feeds))
			for i, f := range feeds {
				rows[i] = feedRow(f)
			}

			return out.Print(feedHeaders, rows, feeds)
		},
	}
}

func newFeedsGetCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get FEED_KEY",
		Short: "Show feed details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			feed, err := client.GetFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return out.Print(
				[]string{"ID", "KEY", "NAME", "VISIBILITY", "LAST_VALUE", "UNIT", "DESCRIPTION"},
				[][]string{{
					string(feed.ID), feed.Key, feed.Name, string(feed.Visibility),
					orNA(feed.LastValue), feed.UnitSymbol, orNA(feed.Description),
				}},
				feed,
			)
		},
	}
}

func newFeedsCreateCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	var name, description, visibility string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vis, err := aio.ParseVisibility(visibility)
			if err != nil {
				return err
			}

			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			feed, err := client.CreateFeed(cmd.Context(), aio.CreateFeedRequest{
				Name:        name,
				Description: optionalString(cmd.Flags(), "description", description),
				Visibility:  vis,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Feed created: %s", feed.Key))
			return out.Print(feedHeaders, [][]string{feedRow(*feed)}, feed)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Feed name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Feed description")
	cmd.Flags().StringVar(&visibility, "visibility", string(aio.VisibilityPrivate), "Feed visibility (public|private)")
	cmd.MarkFlagRequired("name")

	return cmd
}
