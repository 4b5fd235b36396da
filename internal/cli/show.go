package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0x6d61/scandash/internal/report"
	"github.com/0x6d61/scandash/internal/scan"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the detail report of one scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("format", "f", "text", "Report format (text, json, pdf)")
	showCmd.Flags().StringP("output", "o", "", "Output file path")
}

func runShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if _, err := report.New(format); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	rec, err := a.dash.Select(ctx, args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("scan %q not found", args[0])
	}
	return writeReport(ctx, cmd, rec, format, outputPath)
}

// writeReport renders rec to outputPath, or to the command's stdout when
// no path is given.
func writeReport(ctx context.Context, cmd *cobra.Command, rec *scan.Scan, format, outputPath string) error {
	reporter, err := report.New(format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := reporter.Generate(ctx, rec, out); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	if outputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "[+] Report written to %s\n", outputPath)
	}
	return nil
}
