package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeJobCmd = &cobra.Command{
	Use:   "analyze-job",
	Short: "Extract JobIntelligence from a job description file",
	RunE:  runAnalyzeJob,
}

var analyzeJobInput string

func init() {
	analyzeJobCmd.Flags().StringVarP(&analyzeJobInput, "in", "i", "", "Path to a plain-text job description")
	_ = analyzeJobCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(analyzeJobCmd)
}

func runAnalyzeJob(_ *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(analyzeJobInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	description := strings.TrimSpace(string(raw))
	if description == "" {
		return fmt.Errorf("job description in %s is empty", analyzeJobInput)
	}

	ctx := context.Background()
	pilot, err := newApp(ctx)
	if err != nil {
		return err
	}

	intel, _, err := pilot.Extraction.ExtractJobIntelligence(ctx, description)
	if err != nil {
		return err
	}
	return printJSON(intel)
}
