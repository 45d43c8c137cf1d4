// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/component-manager/internal/docs"
	"github.com/meshintel/component-manager/pkg/types"
)

var docsCmd = &cobra.Command{
	Use:   "docs [id|all]",
	Short: "Generate markdown documentation for components",
	Long: `Docs renders per-component markdown documents. With a component ID it
documents that component only; with "all" (or no argument) it documents
every component still in the identified state, advances each to
documented, and rewrites the master index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func runDocs(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	outputDir, _ := cmd.Flags().GetString("output")
	g := docs.New(st, projectRoot(cmd), types.DocsConfig{OutputDir: outputDir}, os.Stdout)
	ctx := context.Background()

	if len(args) > 0 && args[0] != "all" {
		path, err := g.GenerateComponent(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Documentation generated: %s\n", path)
		return nil
	}

	paths, err := g.GenerateAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Generated documentation for %d components\n", len(paths))
	return nil
}

func init() {
	docsCmd.Flags().String("output", "", "documentation output directory (default: <project-root>/docs/reusable-components)")

	rootCmd.AddCommand(docsCmd)
}
