// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docpress CLI: batch conversion
// of a directory tree of lightweight-markup documents into a mirrored
// tree of rich documents via an external conversion engine.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docpress CLI.
var rootCmd = &cobra.Command{
	Use:   "docpress",
	Short: "Batch-convert a tree of markup documents into rich documents",
	Long: `docpress walks an input directory tree, finds source documents in a
lightweight markup format, and converts each into a rich-document format
through an external engine (pandoc by default), mirroring the input
layout into a parallel output tree.

A failed document never stops the batch: every eligible file is
attempted, and the run ends with a summary of successes and failures.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docpress.yaml or ~/.config/docpress/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docpress")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docpress"))
		}
	}

	viper.SetEnvPrefix("DOCPRESS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
