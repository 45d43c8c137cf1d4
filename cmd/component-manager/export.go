// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/component-manager/internal/export"
	"github.com/meshintel/component-manager/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <id> [id...]",
	Short: "Export components as adapted artifact directories",
	Long: `Export extracts one or more components into self-contained artifact
directories under the export root, applying format-specific source
adaptations. Formats: mcp_module (default), standalone, library.

With several IDs the export runs as a batch: failures are logged and
skipped, and the remaining components are still exported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	format, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("output")
	noDocs, _ := cmd.Flags().GetBool("no-docs")

	opts := export.DefaultOptions()
	opts.Format = types.ExportFormat(format)
	opts.IncludeDocs = !noDocs

	e := export.New(st, projectRoot(cmd), types.ExportConfig{OutputDir: outputDir}, os.Stdout)
	ctx := context.Background()

	if len(args) == 1 {
		result, err := e.Export(ctx, args[0], opts)
		if err != nil {
			return err
		}
		printExportResult(result)
		return nil
	}

	results := e.ExportBatch(ctx, args, opts)
	fmt.Printf("Exported %d of %d components\n", len(results), len(args))
	for _, result := range results {
		printExportResult(result)
	}
	if len(results) < len(args) {
		return fmt.Errorf("%d export(s) failed", len(args)-len(results))
	}
	return nil
}

func printExportResult(result *export.Result) {
	fmt.Println("Export completed!")
	fmt.Printf("   Output: %s\n", result.OutputPath)
	fmt.Printf("   Files: %d\n", result.Metadata.FileCount)
	fmt.Printf("   Size: %dKB\n", result.Metadata.TotalSize/1024)
	if len(result.Adaptations) > 0 {
		fmt.Println("   Adaptations made:")
		for _, a := range result.Adaptations {
			fmt.Printf("      %s: %s\n", a.Type, a.Description)
		}
	}
}

func init() {
	exportCmd.Flags().String("format", string(types.FormatMCPModule), "export format: mcp_module, standalone, or library")
	exportCmd.Flags().String("output", "", "export root directory (default: <project-root>/exports/cyrano-components)")
	exportCmd.Flags().Bool("no-docs", false, "skip the export README")

	rootCmd.AddCommand(exportCmd)
}
