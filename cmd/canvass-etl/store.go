package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtorrado/canvass-etl/internal/store"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Query or export the SQLite results archive",
	Long: `Store inspects the archive written by "results --db": typed canvass
rows plus the unresolved anomalies held back for manual review.`,
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List archived canvass rows",
	RunE:  runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	precinct, _ := cmd.Flags().GetString("precinct")
	city, _ := cmd.Flags().GetString("city")
	method, _ := cmd.Flags().GetString("method")
	limit, _ := cmd.Flags().GetInt("limit")

	rows, err := st.Query(context.Background(), store.QueryOptions{
		Precinct:   precinct,
		City:       city,
		Method:     method,
		MaxResults: limit,
	})
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("No rows found.")
		return nil
	}

	fmt.Printf("%-8s  %-12s  %-14s  %8s  %8s  %8s\n",
		"Precinct", "Method", "City", "Reg", "Cast", "Turnout")
	for _, r := range rows {
		fmt.Printf("%-8s  %-12s  %-14s  %8s  %8s  %8s\n",
			r.Precinct, r.Method, r.City, countStr(r.Registered), countStr(r.Cast), r.TurnoutPct)
	}
	fmt.Printf("\n%d rows\n", len(rows))
	return nil
}

func countStr(c types.Count) string {
	if !c.Valid {
		return "-"
	}
	return fmt.Sprintf("%d", c.Value)
}

// --- anomalies subcommand ---

var storeAnomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "List unresolved rows held back for manual review",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		anomalies, err := st.Anomalies(context.Background())
		if err != nil {
			return err
		}
		if len(anomalies) == 0 {
			fmt.Println("No anomalies recorded.")
			return nil
		}
		for _, a := range anomalies {
			fmt.Printf("%s  %s  %q\n", a.RecordedAt, a.Reason, a.Fields)
		}
		fmt.Printf("\n%d anomalies\n", len(anomalies))
		return nil
	},
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the archive to YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		path := "canvass-archive.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		if err := st.ExportYAML(context.Background(), path); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("archive %s not found: run \"results --db %s\" first", dbPath, dbPath)
	}
	return store.Open(types.StoreConfig{DBPath: dbPath})
}

func init() {
	storeCmd.PersistentFlags().String("db", "canvass.db", "SQLite archive file")

	storeQueryCmd.Flags().String("precinct", "", "filter by precinct identifier")
	storeQueryCmd.Flags().String("city", "", "filter by city")
	storeQueryCmd.Flags().String("method", "", "filter by reporting method")
	storeQueryCmd.Flags().Int("limit", 0, "maximum rows (0 = use default)")

	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeAnomaliesCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
