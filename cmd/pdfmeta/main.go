// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfmeta CLI, which enriches
// academic PDFs with bibliographic metadata from Crossref.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdfmeta CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfmeta",
	Short: "Enrich academic PDFs with Crossref metadata",
	Long: `pdfmeta identifies academic papers from their PDF content and filename,
matches them against the Crossref catalog, and writes the confirmed
bibliographic metadata back into the file. It can also rename files to a
citation-style name and emit YAML sidecars.

Run "pdfmeta process" on files or directories to enrich them, or
"pdfmeta lookup" to inspect the Crossref record for a single DOI.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfmeta.yaml or ~/.config/pdfmeta/config.yaml)")
}

func initConfig() {
	// A .env next to the working directory can carry CROSSREF_EMAIL.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfmeta")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfmeta"))
		}
	}

	viper.SetEnvPrefix("PDFMETA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
