package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/wallet-exporter/internal/polling/health"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health of a running exporter",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "http://localhost:9091", "base URL of a running exporter")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, err := fetchReport(ctx, statusAddr)
	if err != nil {
		slog.Error("Failed to fetch status", "addr", statusAddr, "error", err)
		os.Exit(1)
	}
	printReport(os.Stdout, report)
}

func fetchReport(ctx context.Context, addr string) (health.HealthReport, error) {
	var report health.HealthReport

	url := strings.TrimRight(addr, "/") + "/health/detailed"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return report, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return report, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return report, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return report, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}

func printReport(out io.Writer, report health.HealthReport) {
	_, _ = fmt.Fprintf(out, "status: %s", report.SystemStatus)
	if report.LastSweepAt != nil {
		_, _ = fmt.Fprintf(out, "  last sweep: %s (%dms)", report.LastSweepAt.Format(time.RFC3339), report.SweepDurationMs)
	}
	if report.Stale {
		_, _ = fmt.Fprint(out, "  STALE")
	}
	_, _ = fmt.Fprintln(out)

	names := make([]string, 0, len(report.Networks))
	for name := range report.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NETWORK\tSTATUS\tPAIRS\tFAILED\tERROR RATE\tLATENCY\tLAST ERROR")
	for _, name := range names {
		n := report.Networks[name]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\t%dms\t%s\n",
			name, n.Status, n.Pairs, n.Failed, n.RPCErrorRate*100, n.AvgLatencyMs, n.LastError)
	}
	_ = w.Flush()
}
