// Command pilotctl runs the CareerPilot extraction pipeline from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"careerpilot/backend/internal/app"
	"careerpilot/backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "pilotctl",
	Short: "CareerPilot command line tools",
	Long:  "pilotctl parses resumes, analyzes job postings and rebuilds the experience index without going through the HTTP API.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, config.Load())
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
