package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/aio/internal/aio"
)

var dataHeaders = []string{"ID", "VALUE", "CREATED", "LAT", "LON", "ELE"}

func dataRow(p aio.DataPoint) []string {
	return []string{string(p.ID), p.Value, p.CreatedAt, formatFloat(p.Lat), formatFloat(p.Lon), formatFloat(p.Ele)}
}

// NewDataCmd создаёт группу команд для работы с данными feed.
func NewDataCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Send and read feed data",
	}

	cmd.AddCommand(
		newDataSendCmd(clientFn, outputFn),
		newDataGetCmd(clientFn, outputFn),
		newDataListCmd(clientFn, outputFn),
	)

	return cmd
}

func newDataSendCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	var lat, lon, ele float64
	var createdAt string

	cmd := &cobra.Command{
		Use:   "send FEED_KEY VALUE",
		Short: "Send a value to a feed",
		Long:  `Send a value to a feed.

Negative numbers are accepted as VALUE (adafruit data send temp -5).
Use "--" to pass any other value starting with a dash:
  adafruit data send status -- -offline`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := optionalTime(cmd.Flags(), "created-at", createdAt)
			if err != nil {
				return err
			}

			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			feedKey, value := args[0], args[1]
			point, err := client.SendData(cmd.Context(), feedKey, value, aio.SendOptions{
				Lat:       optionalFloat(cmd.Flags(), "lat", lat),
				Lon:       optionalFloat(cmd.Flags(), "lon", lon),
				Ele:       optionalFloat(cmd.Flags(), "ele", ele),
				CreatedAt: at,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Sent %s to %s", value, feedKey))
			return out.Print(dataHeaders, [][]string{dataRow(*point)}, point)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().Float64Var(&ele, "ele", 0, "Elevation")
	cmd.Flags().StringVar(&createdAt, "created-at", "", "Timestamp (ISO 8601), defaults to server time")

	return cmd
}

func newDataGetCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get FEED_KEY DATA_ID",
		Short: "Show a data point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			point, err := client.GetData(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			return out.Print(dataHeaders, [][]string{dataRow(*point)}, point)
		},
	}
}

func newDataListCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	var limit int
	var start, end string

	cmd := &cobra.Command{
		Use:   "list FEED_KEY",
		Short: "List data points of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New("invalid value for --limit: must be positive")
			}
			startTime, err := optionalTime(cmd.Flags(), "start", start)
			if err != nil {
				return err
			}
			endTime, err := optionalTime(cmd.Flags(), "end", end)
			if err != nil {
				return err
			}
			if startTime != nil && endTime != nil && endTime.Before(*startTime) {
				return errors.New("--end must not be before --start")
			}

			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			points, err := client.ListData(cmd.Context(), args[0], aio.ListDataOptions{
				Limit:     limit,
				StartTime: startTime,
				EndTime:   endTime,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, len(points))
			for i, p := range points {
				rows[i] = dataRow(p)
			}

			return out.Print(dataHeaders, rows, points)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", aio.DefaultDataLimit, "Maximum number of data points")
	cmd.Flags().StringVar(&start, "start", "", "Start of time window (ISO 8601)")
	cmd.Flags().StringVar(&end, "end", "", "End of time window (ISO 8601)")

	return cmd
}
