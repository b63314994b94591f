package main

import (
	"fmt"
	"os"

	"github.com/campuskit/virtualta/internal/cli"
	"github.com/campuskit/virtualta/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "virtualtad",
		Short: "Virtual TA daemon and admin CLI",
		Long:  "Virtual TA daemon for running the API server and managing the document index",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
