package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/0x6d61/scandash/internal/dashboard"
	"github.com/0x6d61/scandash/internal/report"
	"github.com/0x6d61/scandash/internal/simulator"
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Run a simulated scan against a domain or URL",
	Long: `Scan validates the target, replays the scan milestones with their
progress and adds the resulting record to the registry. The record is then
printed as a report.

No requests are sent to the target.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("format", "f", "text", "Report format (text, json, pdf)")
	scanCmd.Flags().StringP("output", "o", "", "Output file path")
	scanCmd.Flags().Duration("tick-interval", simulator.DefaultTickInterval, "Delay between scan milestones")
	scanCmd.Flags().Duration("settle-delay", simulator.DefaultSettleDelay, "Delay between the last milestone and completion")
}

// runScan drives one simulated scan in the terminal.
func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// ------------------------------------------------------------------ //
	// 1. Read flags and validate the target before wiring anything
	// ------------------------------------------------------------------ //
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if _, err := report.New(format); err != nil {
		return err
	}
	target, err := simulator.Validate(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", simulator.UserMessage(err), err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	// ------------------------------------------------------------------ //
	// 2. Context (CTRL+C abandons the scan)
	// ------------------------------------------------------------------ //
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	// ------------------------------------------------------------------ //
	// 3. Start the simulation with terminal hooks
	// ------------------------------------------------------------------ //
	var (
		mu   sync.Mutex
		last simulator.LogLine
	)
	hooks := simulator.Hooks{
		OnLogAppended: func(line simulator.LogLine) {
			mu.Lock()
			last = line
			mu.Unlock()
		},
		OnProgressChanged: func(p float64) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "[*] %s (%.0f%%)\n", last, p)
		},
	}

	mu.Lock()
	sess, err := a.dash.StartScan(target, hooks)
	if err == nil {
		fmt.Fprintf(out, "[*] %s\n", sess.View().StartedNote)
	}
	mu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: %w", simulator.UserMessage(err), err)
	}

	// ------------------------------------------------------------------ //
	// 4. Wait for completion
	// ------------------------------------------------------------------ //
	select {
	case <-sess.Done():
	case <-ctx.Done():
		if err := a.dash.AbandonScan(sess.ID()); err != nil {
			return err
		}
		mu.Lock()
		fmt.Fprintln(out, "[!] Scan abandoned")
		mu.Unlock()
		return ctx.Err()
	}

	view := sess.View()
	switch view.Status {
	case dashboard.SessionCompleted:
	case dashboard.SessionFailed:
		return fmt.Errorf("scan failed: %s", view.Error)
	default:
		return fmt.Errorf("scan ended with status %s", view.Status)
	}
	fmt.Fprintf(out, "[+] Scan complete, record %s added\n\n", view.ScanID)

	// ------------------------------------------------------------------ //
	// 5. Report
	// ------------------------------------------------------------------ //
	rec, err := a.dash.Scan(context.WithoutCancel(ctx), view.ScanID)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.New("completed scan record not found")
	}
	return writeReport(ctx, cmd, rec, format, outputPath)
}
