// TODO: refactor [RootCmd] to be a func
package main

import (
	"github.com/spf13/cobra"
	"cfbranker.dev/cfb/cmd"
	"cfbranker.dev/cfb/internal/echo"
)

// RootCmd is the root command for the cfbranker CLI
var RootCmd = &cobra.Command{
	Use:   "cfbranker",
	Short: "College football Elo ranking and prediction toolkit",
	Long: echo.HeaderStyle().Render("CFB Ranker") + "\n\n" +
		"A toolkit for ingesting college football schedules and results,\n" +
		"computing Elo-derived rankings, and serving predictions over HTTP.",
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Path to config file (default: searches ./conf.toml, $HOME/.cfbranker/conf.toml, /etc/cfbranker/conf.toml)")
	RootCmd.AddCommand(cmd.DbCmd())
	RootCmd.AddCommand(cmd.ServerCmd())
	RootCmd.AddCommand(cmd.CacheCmd())
	RootCmd.AddCommand(cmd.IngestCmd())
	RootCmd.AddCommand(cmd.AdminCmd())
}
