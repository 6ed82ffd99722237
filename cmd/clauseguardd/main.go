package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parchlabs/clauseguard/internal/cli"
	"github.com/parchlabs/clauseguard/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clauseguardd",
		Short: "ClauseGuard daemon and CLI",
		Long:  "ClauseGuard daemon for running the API server, the analysis worker, and admin tooling",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.AnalyzeCmd())
	rootCmd.AddCommand(admin.DocumentsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
