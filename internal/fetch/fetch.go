// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads source PDFs ahead of extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mtorrado/canvass-etl/internal/httputil"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

// Download fetches url into destPath. The body streams to a temp file in
// the destination directory and is renamed on success, so a failed
// download never leaves a partial PDF behind.
func Download(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig, w io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	fmt.Fprintf(w, "downloading: %s\n", url)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("saving %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving download into place: %w", err)
	}

	fmt.Fprintf(w, "saved: %s\n", destPath)
	return nil
}

// DestName derives a local filename from a document URL, falling back to
// "document.pdf" when the URL path has no usable base.
func DestName(url string) string {
	base := path.Base(strings.SplitN(url, "?", 2)[0])
	if base == "" || base == "." || base == "/" {
		return "document.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(base), ".pdf") {
		base += ".pdf"
	}
	return base
}
