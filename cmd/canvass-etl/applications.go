package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mtorrado/canvass-etl/internal/apps"
	"github.com/mtorrado/canvass-etl/internal/pdftext"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

const (
	defaultApplicationsPDF  = "ATP-Cycle-6-Applications.pdf"
	defaultApplicationsJSON = "ATP-Cycle-6-Applications.json"
)

var applicationsCmd = &cobra.Command{
	Use:   "applications [pdf]",
	Short: "Extract grant-application rows into a JSON document",
	Long: `Applications reads the ATP Cycle 6 application-list PDF and writes the
rows as an ordered JSON array (applicationID, applicationNumber,
implementingAgencyName, projectName, receivedDate).

The positional argument overrides the default input path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApplications,
}

func runApplications(cmd *cobra.Command, args []string) error {
	cfg := applicationsConfig(cmd, args)

	doc, err := pdftext.Open(cfg.InputPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	records, summary, err := apps.ProcessDocument(doc, os.Stderr)
	if err != nil {
		return err
	}

	if err := apps.WriteJSON(cfg.OutputPath, records); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d applications, %d unresolved)\n", cfg.OutputPath, summary.Records, summary.Dropped)
	return nil
}

func applicationsConfig(cmd *cobra.Command, args []string) types.ApplicationsConfig {
	input := viper.GetString("applications.input_path")
	if input == "" {
		input = defaultApplicationsPDF
	}
	if len(args) > 0 {
		input = args[0]
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = defaultApplicationsJSON
	}

	return types.ApplicationsConfig{InputPath: input, OutputPath: output}
}

func init() {
	applicationsCmd.Flags().String("output", defaultApplicationsJSON, "path for the JSON output document")

	rootCmd.AddCommand(applicationsCmd)
}
