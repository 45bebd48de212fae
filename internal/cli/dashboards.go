package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/aio/internal/aio"
)

var dashboardHeaders = []string{"KEY", "NAME", "DESCRIPTION", "CREATED"}

func dashboardRow(d aio.Dashboard) []string {
	return []string{d.Key, d.Name, orNA(d.Description), d.CreatedAt}
}

// NewDashboardsCmd создаёт группу команд для управления dashboards.
func NewDashboardsCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboards",
		Short: "Manage dashboards",
	}

	cmd.AddCommand(
		newDashboardsListCmd(clientFn, outputFn),
		newDashboardsGetCmd(clientFn, outputFn),
		newDashboardsCreateCmd(clientFn, outputFn),
	)

	return cmd
}

func newDashboardsListCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all dashboards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			dashboards, err := client.ListDashboards(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(dashboards))
			for i, d := range dashboards {
				rows[i] = dashboardRow(d)
			}

			return out.Print(dashboardHeaders, rows, dashboards)
		},
	}
}

func newDashboardsGetCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get DASHBOARD_KEY",
		Short: "Show dashboard details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			dashboard, err := client.GetDashboard(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return out.Print(dashboardHeaders, [][]string{dashboardRow(*dashboard)}, dashboard)
		},
	}
}

func newDashboardsCreateCmd(clientFn func() (*aio.Client, error), outputFn func() *Output) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			out := outputFn()

			dashboard, err := client.CreateDashboard(cmd.Context(), aio.CreateDashboardRequest{
				Name:        name,
				Description: optionalString(cmd.Flags(), "description", description),
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Dashboard created: %s", dashboard.Key))
			return out.Print(dashboardHeaders, [][]string{dashboardRow(*dashboard)}, dashboard)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Dashboard name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Dashboard description")
	cmd.MarkFlagRequired("name")

	return cmd
}
