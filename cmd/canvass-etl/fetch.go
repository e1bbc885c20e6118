package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtorrado/canvass-etl/internal/fetch"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL [dest]",
	Short: "Download a source PDF",
	Long: `Fetch downloads a published PDF to the local filesystem so the results
or applications pipeline can process it. Throttled responses are retried
with exponential backoff.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	url := args[0]
	dest := fetch.DestName(url)
	if len(args) > 1 {
		dest = args[1]
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	retries, _ := cmd.Flags().GetInt("max-retries")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "canvass-etl/" + version,
		},
		MaxRetries: retries,
	}

	client := &http.Client{Timeout: cfg.Timeout}
	return fetch.Download(context.Background(), client, url, dest, cfg, os.Stderr)
}

func init() {
	fetchCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")
	fetchCmd.Flags().Int("max-retries", 5, "retry attempts on throttled responses")

	rootCmd.AddCommand(fetchCmd)
}
