package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"careerpilot/backend/internal/services"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Parse a resume file into MasterResume JSON",
	Long:  "Extract the text of a PDF, DOCX or plain-text resume and print the structured MasterResume. Nothing is saved.",
	RunE:  runParseResume,
}

var parseResumeInput string

func init() {
	parseResumeCmd.Flags().StringVarP(&parseResumeInput, "in", "i", "", "Path to the resume file")
	_ = parseResumeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(parseResumeInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	ctx := context.Background()
	pilot, err := newApp(ctx)
	if err != nil {
		return err
	}

	resume, err := pilot.Profiles.ParseResume(ctx, &services.Upload{
		Filename: filepath.Base(parseResumeInput),
		Data:     data,
	})
	if err != nil {
		return err
	}
	return printJSON(resume)
}
