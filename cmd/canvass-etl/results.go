package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/mtorrado/canvass-etl/internal/arrowio"
	"github.com/mtorrado/canvass-etl/internal/canvass"
	"github.com/mtorrado/canvass-etl/internal/pdftext"
	"github.com/mtorrado/canvass-etl/internal/store"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

// defaultCanvassPDF is the filename the elections office publishes the
// canvass under.
const defaultCanvassPDF = "measure-canvass.pdf"

var resultsCmd = &cobra.Command{
	Use:   "results [pdf]",
	Short: "Extract per-precinct measure results into Arrow frame files",
	Long: `Results reads the election-canvass PDF, reconstructs one typed row per
(precinct, reporting method), repairs known data-entry anomalies, and
pivots the rows into one wide frame per ballot measure. The frames are
written as measure-c.arrow and measure-d.arrow.

The positional argument overrides the default input path. Rows no repair
rule can resolve are logged and excluded; they do not fail the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResults,
}

func runResults(cmd *cobra.Command, args []string) error {
	cfg := canvassConfig(cmd, args)

	doc, err := pdftext.Open(cfg.InputPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	printDocumentInfo(doc)

	corrections, err := canvass.LoadCorrections(cfg.CorrectionsPath)
	if err != nil {
		return err
	}

	rep := canvass.NewRepairer(corrections, os.Stderr)
	results, _, err := canvass.ProcessDocument(doc, rep, os.Stderr)
	if err != nil {
		return err
	}

	frameC, frameD, err := canvass.BuildFrames(results)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// The two frame files are independent; write them concurrently and
	// join before reporting.
	var g errgroup.Group
	pathC := filepath.Join(cfg.OutputDir, "measure-c.arrow")
	pathD := filepath.Join(cfg.OutputDir, "measure-d.arrow")
	g.Go(func() error { return arrowio.WriteFrame(pathC, frameC) })
	g.Go(func() error { return arrowio.WriteFrame(pathD, frameD) })
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d precincts)\n", pathC, frameC.Len())
	fmt.Printf("wrote %s (%d precincts)\n", pathD, frameD.Len())

	if cfg.DBPath != "" {
		st, err := store.Open(types.StoreConfig{DBPath: cfg.DBPath})
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveRun(context.Background(), results, rep.Anomalies()); err != nil {
			return err
		}
		fmt.Printf("archived %d rows, %d anomalies to %s\n", len(results), rep.Dropped(), cfg.DBPath)
	}

	return nil
}

// printDocumentInfo prints page count and the information dictionary.
// Diagnostic only, not part of the output contract.
func printDocumentInfo(doc *pdftext.Document) {
	fmt.Fprintf(os.Stderr, "pages: %d\n", doc.NumPages())

	info := doc.Info()
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stderr, "%s: %s\n", k, info[k])
	}
}

func canvassConfig(cmd *cobra.Command, args []string) types.CanvassConfig {
	input := viper.GetString("canvass.input_path")
	if input == "" {
		input = defaultCanvassPDF
	}
	if len(args) > 0 {
		input = args[0]
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	corrections, _ := cmd.Flags().GetString("corrections")
	dbPath, _ := cmd.Flags().GetString("db")

	return types.CanvassConfig{
		InputPath:       input,
		OutputDir:       outputDir,
		CorrectionsPath: corrections,
		DBPath:          dbPath,
	}
}

func init() {
	resultsCmd.Flags().String("output-dir", ".", "directory for the Arrow frame files")
	resultsCmd.Flags().String("corrections", "", "YAML correction table replacing the built-in one")
	resultsCmd.Flags().String("db", "", "SQLite archive to persist rows and anomalies into")

	rootCmd.AddCommand(resultsCmd)
}
