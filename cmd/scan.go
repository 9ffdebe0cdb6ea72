package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"slimbox/internal/config"
	"slimbox/internal/report"
	"slimbox/internal/scan"
	"slimbox/internal/tui"
	"slimbox/pkg/imgutil"
)

var scanCmd = &cobra.Command{
	Use:           "scan [data-root]",
	Short:         "Analyze the attachment collection without modifying anything",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		if len(args) == 1 {
			cfg.DataRoot = args[0]
		}
		if cfg.DataRoot == "" {
			return fmt.Errorf("data root is required (positional argument or HBX_DATA_PATH)")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		dist := report.NewDistribution()
		pending := 0
		unreadable := 0

		records, errc := scan.Scan(ctx, cfg.DataRoot)
		for rec := range records {
			if rec.Err != nil {
				unreadable++
				fmt.Fprintf(os.Stdout, "  %s %s %s\n",
					scanBulletStyle.Render("-"),
					scanWarnStyle.Render(rec.RelPath),
					scanDimStyle.Render(rec.Err.Error()),
				)
				continue
			}
			dist.Add(rec.Kind, rec.Size)
			if rec.Kind != imgutil.KindWebP {
				pending++
			}
		}
		if err := <-errc; err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%s\n", scanHeadStyle.Render("Format distribution"))
		for _, line := range dist.Lines() {
			fmt.Fprintf(os.Stdout, "  %s %s\n", scanBulletStyle.Render("-"), scanValueStyle.Render(line))
		}
		fmt.Fprintln(os.Stdout)
		fmt.Fprintf(os.Stdout, "Collection size: %s\n", report.HumanBytes(dist.TotalBytes()))
		fmt.Fprintf(os.Stdout, "Pending conversion: %d\n", pending)
		if unreadable > 0 {
			fmt.Fprintf(os.Stdout, "Unreadable: %d\n", unreadable)
		}
		return nil
	},
}

var (
	scanHeadStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	scanValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	scanWarnStyle   = lipgloss.NewStyle().Foreground(tui.ColorWarn)
	scanDimStyle    = lipgloss.NewStyle().Foreground(tui.ColorDim)
	scanBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(scanCmd)
}
