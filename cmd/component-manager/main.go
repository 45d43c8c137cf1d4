// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the component-manager CLI.
// See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/component-manager/internal/store"
	"github.com/meshintel/component-manager/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the component-manager CLI.
var rootCmd = &cobra.Command{
	Use:   "component-manager",
	Short: "Identify, document, and export reusable components",
	Long: `component-manager scans a project tree for reusable components, keeps
their analysis in a local SQLite database, and drives them through a
documentation and export pipeline targeting the Cyrano MCP runtime.

Each pipeline stage is a subcommand: scan, list, docs, export, security,
report, and tags.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./component-manager.yaml or ~/.config/component-manager/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "component database file (default: components.db)")
	rootCmd.PersistentFlags().String("project-root", "", "project root to scan and read sources from (default: current directory)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("component-manager")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "component-manager"))
		}
	}

	viper.SetEnvPrefix("COMPONENT_MANAGER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setting resolves a value from flag, then config, then fallback.
func setting(cmd *cobra.Command, flag, key, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func openStore(cmd *cobra.Command) (store.Store, error) {
	path := setting(cmd, "db", "store.path", "components.db")
	return store.Open(types.StoreConfig{Path: path})
}

func projectRoot(cmd *cobra.Command) string {
	return setting(cmd, "project-root", "scanner.project_root", ".")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
