package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightbooks/taxledger/internal/activity"
	"github.com/freightbooks/taxledger/internal/ledger"
	"github.com/freightbooks/taxledger/internal/model"
	"github.com/freightbooks/taxledger/internal/timestamp"
)

func newJurisdictionCommand(opts *rootOptions) *cobra.Command {
	jurCmd := &cobra.Command{
		Use:     "jurisdiction",
		Aliases: []string{"jur"},
		Short:   "Show and extend the tax rate table",
	}
	jurCmd.AddCommand(
		newJurisdictionListCommand(opts),
		newJurisdictionAddCommand(opts),
	)
	return jurCmd
}

func newJurisdictionListCommand(opts *rootOptions) *cobra.Command {
	var at string
	var history bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rates in effect, or every recorded rate with --history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now().UTC()
			if at != "" {
				var err error
				if when, err = timestamp.Parse(at); err != nil {
					return err
				}
			}

			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			rates := s.book().Rates()

			var rows []model.JurisdictionRate
			if history {
				rows = rates.All()
			} else {
				for _, name := range rates.Names() {
					r, err := rates.Lookup(name, when)
					if err != nil {
						continue
					}
					rows = append(rows, r)
				}
			}

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "JURISDICTION\tRATE (%)\tLABEL\tEFFECTIVE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, ledger.Percent(r.Rate), r.Label, r.EffectiveFrom.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "show rates in effect at MM/DD/YYYY [HH:MM]")
	cmd.Flags().BoolVar(&history, "history", false, "show every recorded rate")
	return cmd
}

func newJurisdictionAddCommand(opts *rootOptions) *cobra.Command {
	var name, rate, label, effective string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a jurisdiction rate from an effective date",
		Long: "Record a jurisdiction rate from an effective date. Rates are never\n" +
			"edited: a change is a new rate with a later effective date. Existing\n" +
			"entries keep the rate they were created with.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRate(rate)
			if err != nil {
				return err
			}
			from := time.Now().UTC().Truncate(24 * time.Hour)
			if effective != "" {
				if from, err = timestamp.Parse(effective); err != nil {
					return err
				}
			}

			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			jr := model.JurisdictionRate{
				Name:          strings.TrimSpace(name),
				Rate:          r,
				Label:         label,
				EffectiveFrom: from,
			}
			if err := s.book().Rates().Add(jr); err != nil {
				return err
			}

			details := fmt.Sprintf("%s %s%% from %s", jr.Name, ledger.Percent(jr.Rate), jr.EffectiveFrom.Format(time.DateOnly))
			if err := s.record(activity.ActionAddJurisdiction, jr.Name, details); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Added rate %s\n", details)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "jurisdiction name (required)")
	f.StringVar(&rate, "rate", "", `rate as a fraction ("0.13") or percentage ("13%") (required)`)
	f.StringVar(&label, "label", "", "tax label, e.g. HST")
	f.StringVar(&effective, "effective", "", "effective date MM/DD/YYYY (default today)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("rate")

	return cmd
}
