// Command lifeof is the terminal front end of the LifeOf API.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkor2/lifeof/internal/client"
	"github.com/jkor2/lifeof/internal/config"
	"github.com/jkor2/lifeof/internal/logger"
)

var (
	apiURL    string
	statePath string
)

func main() {
	l, _ := logger.New(config.LogConfig{Level: "warn", Format: "text"}, os.Stderr)
	slog.SetDefault(l)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaultState, _ := client.StatePath()

	rootCmd := &cobra.Command{
		Use:          "lifeof",
		Short:        "Log daily AM/PM entries and read WHOOP trends",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("LIFEOF_API_URL", client.DefaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", defaultState, "local state file")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(attrsCmd())
	rootCmd.AddCommand(entriesCmd())
	rootCmd.AddCommand(whoopCmd())
	rootCmd.AddCommand(chartsCmd())
	return rootCmd
}

// newClient builds an API client carrying the stored token and local state.
func newClient() *client.Client {
	st, err := client.LoadState(statePath)
	if err != nil {
		slog.Warn("state unreadable, starting fresh", "path", statePath, "err", err)
	}
	c := client.New(apiURL).WithState(st)
	if tok, err := loadToken(); err == nil {
		c.SetToken(tok)
	}
	c.OnTokenRenewed(func(tok string) {
		if err := saveToken(tok); err != nil {
			slog.Warn("renewed token not stored", "err", err)
		}
	})
	return c
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
