// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/component-manager/internal/scanner"
	"github.com/meshintel/component-manager/pkg/types"
)

var securityCmd = &cobra.Command{
	Use:   "security [id]",
	Short: "Run security heuristics over stored components",
	Long: `Security re-reads component sources and records heuristic findings.
With a component ID it scans that component and prints its findings;
without one it sweeps every component.

Use --mark to set a component's security status manually after review.
The rejected status is only ever set through this path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSecurity,
}

func runSecurity(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	if mark, _ := cmd.Flags().GetString("mark"); mark != "" {
		if len(args) == 0 {
			return fmt.Errorf("--mark requires a component ID")
		}
		status := types.SecurityStatus(mark)
		if !status.Valid() {
			return fmt.Errorf("unknown security status %q: use pending, approved, rejected, or needs_review", mark)
		}
		if err := st.SetSecurityStatus(ctx, args[0], status); err != nil {
			return err
		}
		fmt.Printf("Marked %s as %s\n", args[0], status)
		return nil
	}

	s := scanner.New(st, types.DefaultScannerConfig(projectRoot(cmd)), os.Stdout)

	if len(args) > 0 {
		rec, err := s.PerformSecurityScan(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Security status: %s\n", rec.SecurityStatus)
		if len(rec.Vulnerabilities) == 0 {
			fmt.Println("No security issues found")
			return nil
		}
		fmt.Println("Vulnerabilities found:")
		for i, v := range rec.Vulnerabilities {
			fmt.Printf("%d. [%s] %s\n", i+1, strings.ToUpper(string(v.Severity)), strings.ToUpper(v.Type))
			fmt.Printf("   %s\n", v.Description)
			if v.Line > 0 {
				fmt.Printf("   Line %d\n", v.Line)
			}
		}
		return nil
	}

	flagged, err := s.SecuritySweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nComponents with security findings: %d\n", flagged)
	return nil
}

func init() {
	securityCmd.Flags().String("mark", "", "manually set the security status (approved, rejected, needs_review, pending)")

	rootCmd.AddCommand(securityCmd)
}
