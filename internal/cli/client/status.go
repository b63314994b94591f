package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResponse represents the status API response.
type StatusResponse struct {
	Status           string `json:"status"`
	DataLoaded       bool   `json:"data_loaded"`
	State            string `json:"state"`
	TotalDocuments   int64  `json:"total_documents"`
	OpenAIConfigured bool   `json:"openai_configured"`
	LastError        string `json:"last_error,omitempty"`
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service and index status",
		Long:  "Shows whether the knowledge base is loaded and how many documents are indexed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(cmd, outputJSON)
		},
	}
}

func runStatus(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body, err := api.Get("/api/status")
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	var resp StatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse status: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Status:      %s\n", resp.Status)
	fmt.Printf("State:       %s\n", resp.State)
	fmt.Printf("Data loaded: %t\n", resp.DataLoaded)
	fmt.Printf("Documents:   %d\n", resp.TotalDocuments)
	fmt.Printf("OpenAI:      %t\n", resp.OpenAIConfigured)
	if resp.LastError != "" {
		fmt.Printf("Last error:  %s\n", resp.LastError)
	}

	return nil
}
