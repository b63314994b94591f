package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ScrapeResponse represents the scrape-data API response.
type ScrapeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReingestCmd creates the reingest command.
func ReingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reingest",
		Short: "Trigger a background reingestion",
		Long:  "Clears the index and reloads it from the configured snapshot. Requires the admin token when one is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runReingest(cmd, outputJSON)
		},
	}
}

func runReingest(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body, err := api.Post("/api/scrape-data", nil)
	if err != nil {
		return fmt.Errorf("reingest failed: %w", err)
	}

	var resp ScrapeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Message)
	return nil
}
