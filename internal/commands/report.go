package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freightbooks/taxledger/internal/activity"
	"github.com/freightbooks/taxledger/internal/ledger"
)

func newTotalsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show ledger totals and the net tax payable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			t := s.book().Totals()

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', tabwriter.AlignRight)
			rows := []struct {
				label string
				value string
			}{
				{"Loads", fmt.Sprint(t.Loads)},
				{"Client base", ledger.Money(t.ClientBase)},
				{"Client tax collected", ledger.Money(t.ClientTax)},
				{"Client total", ledger.Money(t.ClientTotal)},
				{"Carrier all-in", ledger.Money(t.CarrierAllIn)},
				{"Carrier pre-tax", ledger.Money(t.CarrierPreTax)},
				{"Carrier tax paid", ledger.Money(t.CarrierTax)},
				{"Profit", ledger.Money(t.Profit)},
				{"ITCs", fmt.Sprint(t.ITCs)},
				{"ITC amount before tax", ledger.Money(t.ITCAmountBeforeTax)},
				{"ITC tax", ledger.Money(t.ITCTax)},
				{"Net payable (loads only)", ledger.Money(t.EntryNetPayable)},
				{"Net tax payable", ledger.Money(t.NetPayable)},
			}
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t\n", r.label, r.value)
			}
			return tw.Flush()
		},
	}
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var outPath, sortBy string
	var ascending bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export loads, ITCs and totals as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("sort") {
				sortBy = s.cfg.Ledger.ExportSort
			}
			if !cmd.Flags().Changed("asc") {
				ascending = s.cfg.Ledger.ExportAscending
			}
			key, err := ledger.ParseSortKey(sortBy)
			if err != nil {
				return err
			}

			b := s.book()
			snap := b.Snapshot()
			totals := ledger.Aggregate(snap.Loads, snap.ITCs)
			exportOpts := ledger.ExportOptions{Sort: key, Ascending: ascending, PartyName: b.PartyName}

			if outPath == "" {
				return ledger.Export(s.out, snap.Loads, snap.ITCs, totals, exportOpts)
			}

			if err := writeFile(outPath, func(w io.Writer) error {
				return ledger.Export(w, snap.Loads, snap.ITCs, totals, exportOpts)
			}); err != nil {
				return err
			}
			abs, _ := filepath.Abs(outPath)
			entry := activity.NewEntry(time.Now(), s.actor, activity.ActionExport, filepath.Base(outPath),
				fmt.Sprintf("%d loads, %d ITCs to %s", totals.Loads, totals.ITCs, abs))
			if err := activity.Append(s.dir, entry); err != nil {
				s.log.Warn("writing activity log failed", zap.Error(err))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d loads and %d ITCs to %s\n", totals.Loads, totals.ITCs, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&sortBy, "sort", "load", "sort loads by load, delivery or client")
	cmd.Flags().BoolVar(&ascending, "asc", false, "sort ascending (default descending)")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
