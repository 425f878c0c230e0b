package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkor2/lifeof/internal/lifelog"
)

func whoopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoop",
		Short: "WHOOP connection and sync",
	}
	cmd.AddCommand(whoopStatusCmd(), whoopConnectCmd(), whoopSyncCmd(), whoopFullCmd())
	return cmd
}

func whoopStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connection and, when connected, the latest data",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			st, err := c.WhoopStatus(cmd.Context())
			if err != nil {
				return err
			}
			renderWhoopStatus(cmd.OutOrStdout(), st)
			if st.Connected {
				renderWhoopData(cmd.OutOrStdout(), c.WhoopData(cmd.Context()))
			}
			return nil
		},
	}
}

func whoopConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Print the WHOOP authorization URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := newClient().WhoopAuthURL(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Open this URL to connect WHOOP:")
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func whoopSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Store the newest WHOOP records",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			resp, err := c.SyncLatest(cmd.Context())
			if err != nil {
				return err
			}
			renderSync(cmd.OutOrStdout(), resp)
			renderWhoopData(cmd.OutOrStdout(), c.WhoopData(cmd.Context()))
			return nil
		},
	}
}

func whoopFullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "full",
		Short: "Fetch and store the whole WHOOP history",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().FullSync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(resp.Message))
			for _, k := range []string{"recovery", "sleep", "workouts"} {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %d\n", k, resp.Summary[k])
			}
			return nil
		},
	}
}

func chartsCmd() *cobra.Command {
	var rangeToken string
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Recovery, sleep and workout trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lifelog.ParseRange(rangeToken)
			if err != nil {
				return err
			}
			ov := newClient().Charts(cmd.Context(), r.Token)
			renderCharts(cmd.OutOrStdout(), ov, r)
			return nil
		},
	}
	cmd.Flags().StringVarP(&rangeToken, "range", "r", lifelog.DefaultRange, "7d, 14d, 30d, 90d or all")
	return cmd
}
