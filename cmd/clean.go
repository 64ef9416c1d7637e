package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rinse/internal/processor"
	"rinse/internal/tui"
)

var (
	cleanInPlace   bool
	cleanOutputDir string
	cleanStripICC  bool
	cleanSkipDupes bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [flags] <path>",
	Short: "Strip EXIF metadata from JPEG and TIFF images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if cleanInPlace && cleanOutputDir != "" {
			return fmt.Errorf("--inplace cannot be used with --output")
		}

		env, err := buildEnvironment()
		if err != nil {
			return err
		}
		env.handler.Stripper().StripICC = cleanStripICC

		outputDir := cleanOutputDir
		if !cleanInPlace && outputDir == "" {
			outputDir = "rinsed"
		}

		if !cleanInPlace {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}
		}

		updates := make(chan processor.ProgressUpdate, 64)
		model := tui.NewModel(updates)
		program := tea.NewProgram(model)

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		summary, _, err := processor.Run(context.Background(), path, processor.Options{
			Mode:           processor.ModeClean,
			InPlace:        cleanInPlace,
			OutputDir:      outputDir,
			SkipDuplicates: cleanSkipDupes,
			Workers:        env.cfg.Workers,
			Handler:        env.handler,
			Guard:          env.guard,
		}, updates)

		close(updates)
		<-uiDone
		if err != nil {
			return err
		}

		rows := []tui.SummaryRow{
			{Label: "Total files processed", Value: fmt.Sprintf("%d", summary.Processed)},
			{Label: "Metadata tags removed", Value: fmt.Sprintf("%d", summary.Tags)},
			{Label: "Duplicates skipped", Value: fmt.Sprintf("%d", summary.Skipped)},
			{Label: "Errors", Value: fmt.Sprintf("%d", summary.Errors)},
			{Label: "Space saved (bytes)", Value: fmt.Sprintf("%d", summary.BytesSaved)},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		if cleanInPlace {
			fmt.Fprintln(os.Stdout, "In-place clean complete.")
		} else {
			outPath := outputDir
			if abs, absErr := filepath.Abs(outputDir); absErr == nil {
				outPath = abs
			}
			fmt.Fprintf(os.Stdout, "Cleaned files written to: %s\n", outPath)
			fmt.Fprintln(os.Stdout, "Note: originals are unchanged unless --inplace is used.")
		}

		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanInPlace, "inplace", "i", false, "modify files in place")
	cleanCmd.Flags().StringVarP(&cleanOutputDir, "output", "o", "", "destination folder for sanitized copies")
	cleanCmd.Flags().BoolVar(&cleanStripICC, "strip-icc", false, "also remove ICC color profiles")
	cleanCmd.Flags().BoolVar(&cleanSkipDupes, "skip-duplicates", false, "skip files whose content digest was already cleaned")

	rootCmd.AddCommand(cleanCmd)
}
