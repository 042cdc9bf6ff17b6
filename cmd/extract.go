package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AVSAkash/interview-assistant/internal/domain/resume"
)

var extractMIME string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the name, email and phone found in a PDF or DOCX resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		mime := extractMIME
		if mime == "" {
			mime = resume.MIMEFromFilename(args[0])
		}

		details, err := resume.NewExtractor().Extract(cmd.Context(), data, mime)
		if err != nil {
			return fmt.Errorf("extract %s: %w", args[0], err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(details)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractMIME, "mime", "", "content type; guessed from the file extension when empty")
}
