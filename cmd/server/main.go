// Command raschd serves Rasch analyses over HTTP and runs them from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Rasch/internal/config"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = ""
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "raschd",
		Short:         "Rasch model estimation service",
		Long:          "raschd estimates person abilities and item difficulties of dichotomous tests with JMLE and reports infit/outfit statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env RASCH_* overrides it)")
	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

func versionString() string {
	if commit == "" {
		return version
	}
	return version + " (" + commit + ")"
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
