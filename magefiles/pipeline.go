//go:build mage

// Pipeline convenience targets wrapping the component-manager CLI.
// Implements: docs/ARCHITECTURE § Developer Tooling.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// runCLI runs the CLI binary with the given arguments, building it
// first when bin/ does not hold one yet.
func runCLI(args ...string) error {
	bin := filepath.Join(binDir, binName)
	if _, err := os.Stat(bin); err != nil {
		if err := Build(); err != nil {
			return err
		}
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", binName, args, err)
	}
	return nil
}

// Scan runs a synchronous full scan of the project tree.
func Scan() error {
	return runCLI("scan", "--sync")
}

// Docs generates documentation for every identified component and
// rewrites the master index.
func Docs() error {
	return runCLI("docs", "all")
}

// Security sweeps every stored component with the security heuristics.
func Security() error {
	return runCLI("security")
}

// Report prints the reusability report.
func Report() error {
	return runCLI("report")
}
