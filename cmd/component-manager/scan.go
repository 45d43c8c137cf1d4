// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/component-manager/internal/scanner"
	"github.com/meshintel/component-manager/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [type]",
	Short: "Scan the project tree for reusable components",
	Long: `Scan walks the configured target directories, analyzes source files
for reusability, and upserts the results into the component database.
The scan type is full_scan (default), incremental, or security_scan.

By default the scan runs in the background and the command polls its
report; a scan outliving the polling window keeps running after the
command prints its report ID.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	scanType := types.ScanFull
	if len(args) > 0 {
		scanType = types.ScanType(args[0])
		switch scanType {
		case types.ScanFull, types.ScanIncremental, types.ScanSecurity:
		default:
			return fmt.Errorf("unknown scan type %q: use full_scan, incremental, or security_scan", args[0])
		}
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, err := scannerConfig(cmd)
	if err != nil {
		return err
	}
	s := scanner.New(st, cfg, os.Stdout)
	ctx := context.Background()

	if sync, _ := cmd.Flags().GetBool("sync"); sync {
		report, err := s.Run(ctx, scanType)
		if err != nil {
			return err
		}
		printScanReport(report)
		return nil
	}

	reportID, err := s.Start(ctx, scanType)
	if err != nil {
		return err
	}
	fmt.Printf("Scan initiated with ID: %s\n", reportID)

	attempts, _ := cmd.Flags().GetInt("wait-attempts")
	delay, _ := cmd.Flags().GetDuration("wait-delay")
	for i := 0; i < attempts; i++ {
		time.Sleep(delay)
		report, err := st.ScanReportByID(ctx, reportID)
		if err != nil {
			return err
		}
		switch report.Status {
		case types.ReportCompleted:
			printScanReport(report)
			return nil
		case types.ReportFailed:
			return fmt.Errorf("scan failed: %v", report.Errors)
		}
		fmt.Print(".")
	}
	fmt.Println("\nScan is still running in the background")
	return nil
}

func printScanReport(report *types.ScanReport) {
	fmt.Println("\nScan Results:")
	fmt.Printf("   Components Found: %d\n", report.ComponentsFound)
	fmt.Printf("   Components Updated: %d\n", report.ComponentsUpdated)
	fmt.Printf("   Cypher Candidates: %d\n", report.CypherCandidates)
	fmt.Printf("   Security Issues: %d\n", report.SecurityIssues)
	fmt.Printf("   Duration: %dms\n", report.ScanDuration)
}

// scannerConfig assembles the scan stage configuration from flags, the
// config file, and defaults.
func scannerConfig(cmd *cobra.Command) (types.ScannerConfig, error) {
	cfg := types.DefaultScannerConfig(projectRoot(cmd))

	if n := viper.GetInt("scanner.min_file_size"); n > 0 {
		cfg.MinFileSize = n
	}
	if n := viper.GetInt("scanner.min_reusability_score"); n > 0 {
		cfg.MinReusabilityScore = n
	}

	targetsFile, _ := cmd.Flags().GetString("targets-file")
	if targetsFile == "" {
		targetsFile = viper.GetString("scanner.targets_file")
	}
	if targetsFile != "" {
		targets, err := scanner.ReadTargetsFile(targetsFile)
		if err != nil {
			return cfg, err
		}
		cfg.Targets = targets
	}
	return cfg, nil
}

func init() {
	scanCmd.Flags().String("targets-file", "", "YAML file listing scan targets (overrides defaults)")
	scanCmd.Flags().Bool("sync", false, "run the scan in the foreground")
	scanCmd.Flags().Int("wait-attempts", 30, "polling attempts before leaving the scan in the background")
	scanCmd.Flags().Duration("wait-delay", 2*time.Second, "delay between polling attempts")

	rootCmd.AddCommand(scanCmd)
}
