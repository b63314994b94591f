package main

import (
	"fmt"
	"os"

	"github.com/campuskit/virtualta/internal/cli"
	"github.com/campuskit/virtualta/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "virtualta",
		Short: "Virtual TA CLI - ask the course assistant from the terminal",
		Long: `Virtual TA CLI provides commands to query the virtual teaching assistant.

Environment variables:
  VTA_API_URL       API base URL (default: http://localhost:8080)
  VTA_ADMIN_TOKEN   Admin token for mutating commands (reingest)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	rootCmd.PersistentFlags().String("admin-token", "", "Admin token (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.ReingestCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
