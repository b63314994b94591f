package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// QuestionRequest represents the answer API request.
type QuestionRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
}

// AnswerLink represents one citation in an answer.
type AnswerLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// AnswerResponse represents the answer API response.
type AnswerResponse struct {
	Answer string       `json:"answer"`
	Links  []AnswerLink `json:"links"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the virtual TA a question",
		Long:  "Sends a question to the virtual TA and prints the answer with source links.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], imagePath, outputJSON)
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Path to an image to attach to the question")

	return cmd
}

func runAsk(cmd *cobra.Command, question, imagePath string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req := QuestionRequest{Question: question}
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		req.Image = base64.StdEncoding.EncodeToString(data)
	}

	body, err := api.Post("/api/", req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var resp AnswerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Answer)
	if len(resp.Links) > 0 {
		fmt.Printf("\nSources:\n")
		for i, link := range resp.Links {
			text := link.Text
			if text == "" {
				text = link.URL
			}
			fmt.Printf("%d. %s\n   %s\n", i+1, text, link.URL)
		}
	}

	return nil
}
