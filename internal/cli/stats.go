package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0x6d61/scandash/internal/report"
	"github.com/0x6d61/scandash/internal/scan"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	st, err := a.dash.Stats(ctx)
	if err != nil {
		return err
	}
	byRisk, err := a.dash.RiskBreakdown(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total Scans:       %d\n", st.TotalScans)
	fmt.Fprintf(out, "Average Score:     %d\n", st.AverageScore)
	fmt.Fprintf(out, "Phishing Detected: %d\n", st.PhishingDetected)
	fmt.Fprintf(out, "Critical Risks:    %d\n", st.CriticalRisks)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "By risk:")
	for _, r := range []scan.Risk{scan.RiskCritical, scan.RiskHigh, scan.RiskMedium, scan.RiskLow} {
		fmt.Fprintf(out, "  %-9s %d\n", report.Label(r)+":", byRisk[r])
	}
	return nil
}
