// Package main is the entry point for the canvass-etl CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the canvass-etl CLI.
var rootCmd = &cobra.Command{
	Use:   "canvass-etl",
	Short: "Extract tabular election and grant data from PDF documents",
	Long: `canvass-etl reconstructs structured records from the positional text
runs inside published PDF documents: the county election canvass
(per-precinct Measure C and Measure D results) and the ATP Cycle 6
grant-application list.

Each extraction is a subcommand: results produces Arrow frame files per
measure, applications produces a JSON document. fetch downloads a source
PDF and store queries the optional SQLite archive.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./canvass-etl.yaml or ~/.config/canvass-etl/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("canvass-etl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "canvass-etl"))
		}
	}

	viper.SetEnvPrefix("CANVASS_ETL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
