package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/wallet-exporter/internal/control"
	"github.com/vietddude/wallet-exporter/internal/core/domain"
	"github.com/vietddude/wallet-exporter/internal/polling/poller"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a single balance sweep and print the results",
	Run:   runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewExporter(cfg)
	if err != nil {
		slog.Error("Failed to initialize exporter", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := app.SweepOnce(ctx)
	if err != nil {
		slog.Error("Sweep failed", "error", err)
		os.Exit(1)
	}

	printSweep(os.Stdout, res, func(name string) int32 {
		n, _ := app.Network(name)
		return n.NativeDecimals()
	})

	if len(res.Failures) > 0 || res.Aborted {
		app.Close()
		os.Exit(1)
	}
}

func printSweep(out io.Writer, res poller.SweepResult, decimals func(network string) int32) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "WALLET\tNETWORK\tADDRESS\tBALANCE\tSTATUS")

	for _, s := range res.Samples {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\tok\n",
			s.Wallet, s.Network, s.Address, domain.FormatNative(s.Amount, decimals(s.Network)))
	}
	for _, f := range res.Failures {
		_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t%s: %v\n", f.Wallet, f.Network, f.Kind, f.Err)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nsweep %s: %d ok, %d failed in %s\n",
		res.ID, len(res.Samples), len(res.Failures), res.Duration.Round(time.Millisecond))
}
