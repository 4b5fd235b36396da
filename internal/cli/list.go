package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0x6d61/scandash/internal/report"
	"github.com/0x6d61/scandash/internal/scan"
)

// urlWidth is the number of URL characters shown in the scans table.
const urlWidth = 35

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List scans in the registry",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	scans, err := a.dash.ListScans(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(scans) == 0 {
		fmt.Fprintln(out, "No scans.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tDOMAIN\tURL\tSCORE\tBAND\tSCANNED")
	for i, s := range scans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			i+1, s.ID, s.Domain, truncateURL(s.URL), s.SecurityScore,
			report.Label(scan.ScoreBand(s.SecurityScore)), scannedAt(s))
	}
	return tw.Flush()
}

// truncateURL shortens u to urlWidth characters followed by "...".
func truncateURL(u string) string {
	r := []rune(u)
	if len(r) <= urlWidth {
		return u
	}
	return string(r[:urlWidth]) + "..."
}

func scannedAt(s *scan.Scan) string {
	t := s.Time()
	if t.IsZero() {
		return s.Timestamp
	}
	return t.Format("2006-01-02 15:04")
}
