// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/component-manager/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List identified components, grouped by type",
	Long: `List prints every component in the database, grouped by component
type, with reusability and security markers. An optional type argument
(service, component, utility, workflow, parser, validator) filters the
listing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	components, err := st.ListComponents(context.Background())
	if err != nil {
		return err
	}
	if len(components) == 0 {
		fmt.Println("No components found. Run a scan first.")
		return nil
	}

	if len(args) > 0 {
		filter := types.ComponentType(args[0])
		if !filter.Valid() {
			return fmt.Errorf("unknown component type %q", args[0])
		}
		var filtered []types.ComponentRecord
		for _, c := range components {
			if c.ComponentType == filter {
				filtered = append(filtered, c)
			}
		}
		components = filtered
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(components)
	}

	fmt.Printf("Found %d components:\n", len(components))

	var order []types.ComponentType
	byType := make(map[types.ComponentType][]types.ComponentRecord)
	for _, c := range components {
		if _, seen := byType[c.ComponentType]; !seen {
			order = append(order, c.ComponentType)
		}
		byType[c.ComponentType] = append(byType[c.ComponentType], c)
	}

	for _, t := range order {
		comps := byType[t]
		fmt.Printf("\n%s (%d)\n", strings.ToUpper(string(t)), len(comps))
		fmt.Println(strings.Repeat("-", 50))
		for _, c := range comps {
			fmt.Printf("%s %s %-25s %d/100  %s\n",
				candidateMarker(c), securityMarker(c.SecurityStatus), c.Name, c.ReusabilityScore, c.FilePath)
			if c.Description != "" {
				fmt.Printf("    %s\n", truncateLine(c.Description, 80))
			}
		}
	}

	var high, candidates, issues int
	for _, c := range components {
		if c.ReusabilityScore >= 80 {
			high++
		}
		if c.CypherCompatibility >= 70 {
			candidates++
		}
		if c.SecurityStatus == types.SecurityNeedsReview || c.SecurityStatus == types.SecurityRejected {
			issues++
		}
	}
	fmt.Println("\nSummary:")
	fmt.Printf("   High Reusability (80+): %d\n", high)
	fmt.Printf("   Cypher Candidates (70+): %d\n", candidates)
	fmt.Printf("   Security Issues: %d\n", issues)
	return nil
}

func candidateMarker(c types.ComponentRecord) string {
	if c.CypherCompatibility >= 70 {
		return "[mcp]"
	}
	return "[   ]"
}

func securityMarker(s types.SecurityStatus) string {
	switch s {
	case types.SecurityApproved:
		return "[ok]    "
	case types.SecurityNeedsReview:
		return "[review]"
	case types.SecurityRejected:
		return "[reject]"
	}
	return "[pend]  "
}

func truncateLine(s string, n int) string {
	if runes := []rune(s); len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}

func init() {
	listCmd.Flags().Bool("json", false, "output components as JSON")

	rootCmd.AddCommand(listCmd)
}
