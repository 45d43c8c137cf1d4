// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/component-manager/internal/tagger"
)

var tagsCmd = &cobra.Command{
	Use:   "tags <file> [file...]",
	Short: "Suggest and apply reusability marker tags to source files",
	Long: `Tags analyzes the given project-relative source files and suggests
reusability marker tags. The default is a dry run that prints the
suggestions; --apply inserts them as comment blocks after each file's
import prologue. Files already carrying markers are skipped.

Use --report for the full tagging report, or --suggestions-out to save
the suggestions as YAML for later review and --from to apply a reviewed
suggestions file.`,
	RunE: runTags,
}

func runTags(cmd *cobra.Command, args []string) error {
	tg := tagger.New(projectRoot(cmd), os.Stdout)

	var taggings []tagger.FileTagging
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		loaded, err := tagger.ReadSuggestions(from)
		if err != nil {
			return err
		}
		taggings = loaded
	} else {
		if len(args) == 0 {
			return fmt.Errorf("at least one file required (or --from <suggestions.yaml>)")
		}
		taggings = tg.AnalyzeFiles(args)
	}

	if len(taggings) == 0 {
		fmt.Println("No files need tagging")
		return nil
	}

	if report, _ := cmd.Flags().GetBool("report"); report {
		fmt.Println(tagger.Report(taggings))
		return nil
	}

	if out, _ := cmd.Flags().GetString("suggestions-out"); out != "" {
		if err := tagger.WriteSuggestions(out, taggings); err != nil {
			return err
		}
		fmt.Printf("Wrote suggestions for %d files to %s\n", len(taggings), out)
		return nil
	}

	apply, _ := cmd.Flags().GetBool("apply")
	if err := tg.Apply(taggings, !apply); err != nil {
		return err
	}
	if !apply {
		fmt.Println("\nRun with --apply to actually add tags to files")
	}
	return nil
}

func init() {
	tagsCmd.Flags().Bool("apply", false, "write the tag blocks into the files (default is dry run)")
	tagsCmd.Flags().Bool("report", false, "print the full tagging report instead of applying")
	tagsCmd.Flags().String("suggestions-out", "", "write suggestions to a YAML file instead of applying")
	tagsCmd.Flags().String("from", "", "apply a previously saved YAML suggestions file")

	rootCmd.AddCommand(tagsCmd)
}
