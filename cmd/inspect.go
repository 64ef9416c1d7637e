package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"rinse/internal/processor"
	"rinse/internal/tui"
)

var inspectInsights bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Report image metadata without modifying files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnvironment()
		if err != nil {
			return err
		}

		path := args[0]
		updates := make(chan processor.ProgressUpdate, 64)
		model := tui.NewModel(updates)
		program := tea.NewProgram(model)

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		_, reports, err := processor.Run(context.Background(), path, processor.Options{
			Mode:     processor.ModeInspect,
			Insights: inspectInsights,
			Workers:  env.cfg.Workers,
			Handler:  env.handler,
		}, updates)
		close(updates)
		<-uiDone
		if err != nil {
			return err
		}

		for i, report := range reports {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "%s\n", fileStyle.Render(report.Path))
			printReport(report)
		}

		return nil
	},
}

func printReport(report processor.Report) {
	if report.Err != nil {
		fmt.Fprintf(os.Stdout, "  %s %s\n",
			bulletStyle.Render("-"),
			dimTextStyle.Render(report.Err.Error()),
		)
		return
	}
	doc := report.Document
	if doc == nil || len(doc.Sections) == 0 {
		note := "no metadata found"
		if doc != nil && doc.Info != "" {
			note = doc.Info
		}
		fmt.Fprintf(os.Stdout, "  %s %s\n", bulletStyle.Render("-"), dimTextStyle.Render(note))
		return
	}

	for _, section := range doc.Sections {
		fmt.Fprintf(os.Stdout, "  %s\n", sectionStyle.Render(section.Label+":"))
		for _, tag := range section.Tags {
			fmt.Fprintf(os.Stdout, "    %s %s %s\n",
				bulletStyle.Render("-"),
				tagStyle.Render(tag.Name+":"),
				valueTextStyle.Render(tag.Value),
			)
		}
	}

	for _, insight := range report.Insights {
		fmt.Fprintf(os.Stdout, "  %s %s\n",
			warnStyle.Render("!"),
			valueTextStyle.Render(fmt.Sprintf("%s: %s", insight.Kind, insight.Message)),
		)
	}
}

var (
	fileStyle      = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	sectionStyle   = lipgloss.NewStyle().Foreground(tui.ColorAccentSoft)
	tagStyle       = lipgloss.NewStyle().Foreground(tui.ColorInk).Bold(true)
	valueTextStyle = lipgloss.NewStyle().Foreground(tui.ColorInk)
	dimTextStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
	bulletStyle    = lipgloss.NewStyle().Foreground(tui.ColorDim)
	warnStyle      = lipgloss.NewStyle().Foreground(tui.ColorWarn).Bold(true)
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectInsights, "insights", false, "summarize what the metadata could reveal")

	rootCmd.AddCommand(inspectCmd)
}
