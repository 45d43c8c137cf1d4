// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshintel/component-manager/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the reusability report",
	Long: `Report summarizes the component database: totals, type breakdown,
reusability distribution, Cyrano MCP candidates, security and export
status counts, and recent scan activity.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	components, err := st.ListComponents(ctx)
	if err != nil {
		return err
	}
	reports, err := st.ListScanReports(ctx)
	if err != nil {
		return err
	}

	rule := strings.Repeat("=", 50)
	fmt.Println("REUSABILITY REPORT")
	fmt.Println(rule)
	fmt.Printf("Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339))

	fmt.Println("OVERVIEW")
	fmt.Printf("Total Components: %d\n", len(components))
	fmt.Printf("Total Scans: %d\n", len(reports))

	fmt.Println("\nBY TYPE")
	for _, line := range countLines(components, func(c types.ComponentRecord) string {
		return string(c.ComponentType)
	}) {
		fmt.Println(line)
	}

	fmt.Println("\nREUSABILITY DISTRIBUTION")
	var excellent, good, average, poor int
	for _, c := range components {
		switch {
		case c.ReusabilityScore >= 80:
			excellent++
		case c.ReusabilityScore >= 60:
			good++
		case c.ReusabilityScore >= 40:
			average++
		default:
			poor++
		}
	}
	fmt.Printf("%-20s %d\n", "Excellent (80-100)", excellent)
	fmt.Printf("%-20s %d\n", "Good (60-79)", good)
	fmt.Printf("%-20s %d\n", "Average (40-59)", average)
	fmt.Printf("%-20s %d\n", "Poor (0-39)", poor)

	var candidates []types.ComponentRecord
	for _, c := range components {
		if c.CypherCompatibility >= 70 {
			candidates = append(candidates, c)
		}
	}
	fmt.Println("\nCYRANO MCP CANDIDATES")
	fmt.Printf("High Compatibility (70+): %d\n", len(candidates))
	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].CypherCompatibility > candidates[j].CypherCompatibility
		})
		if len(candidates) > 10 {
			candidates = candidates[:10]
		}
		fmt.Println("\nTop Candidates:")
		for i, c := range candidates {
			fmt.Printf("%2d. %-25s %d/100\n", i+1, c.Name, c.CypherCompatibility)
		}
	}

	fmt.Println("\nSECURITY STATUS")
	for _, line := range countLines(components, func(c types.ComponentRecord) string {
		return string(c.SecurityStatus)
	}) {
		fmt.Println(line)
	}

	fmt.Println("\nEXPORT STATUS")
	for _, line := range countLines(components, func(c types.ComponentRecord) string {
		return string(c.ExportStatus)
	}) {
		fmt.Println(line)
	}

	if len(reports) > 0 {
		recent := reports
		if len(recent) > 5 {
			recent = recent[:5]
		}
		fmt.Println("\nRECENT SCAN ACTIVITY")
		for _, r := range recent {
			fmt.Printf("%s %-15s %s (%d found)\n",
				r.CreatedAt.Format("2006-01-02"), r.ScanType, r.Status, r.ComponentsFound)
		}
	}

	fmt.Println("\n" + rule)
	fmt.Println("End of Report")
	return nil
}

// countLines tallies components by key, rendered as padded lines in
// descending count order.
func countLines(components []types.ComponentRecord, key func(types.ComponentRecord) string) []string {
	counts := make(map[string]int)
	for _, c := range components {
		counts[key(c)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-15s %d", k, counts[k]))
	}
	return lines
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
