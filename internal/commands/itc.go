package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freightbooks/taxledger/internal/activity"
	"github.com/freightbooks/taxledger/internal/ledger"
	"github.com/freightbooks/taxledger/internal/model"
	"github.com/freightbooks/taxledger/internal/timestamp"
)

func newITCCommand(opts *rootOptions) *cobra.Command {
	itcCmd := &cobra.Command{
		Use:   "itc",
		Short: "Record and review input tax credits",
	}
	itcCmd.AddCommand(
		newITCAddCommand(opts),
		newITCListCommand(opts),
		newITCDeleteCommand(opts),
	)
	return itcCmd
}

func newITCAddCommand(opts *rootOptions) *cobra.Command {
	var in model.ITCInput
	var vendor, invoiced, paid, beforeTax, tax string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an input tax credit",
		Long: "Record an input tax credit. With --vendor, a blank payee, tax\n" +
			"registration number, category or jurisdiction is copied from the vendor.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.PaidAt, err = timestamp.Parse(paid); err != nil {
				return err
			}
			if in.InvoicedAt, err = timestamp.ParseOptional(invoiced); err != nil {
				return err
			}
			if in.AmountBeforeTax, err = parseAmount("before-tax", beforeTax); err != nil {
				return err
			}
			if in.TaxAmount, err = parseAmount("tax", tax); err != nil {
				return err
			}

			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if in.VendorID, err = s.resolveParty(model.PartyVendor, vendor); err != nil {
				return err
			}

			e, err := s.book().AddITC(in)
			if err != nil {
				return err
			}
			details := fmt.Sprintf("%s %s tax %s", e.PayeeName, e.Description, ledger.Money(e.TaxAmount))
			if err := s.record(activity.ActionAddITC, e.ID, details); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Recorded %s: %s, %s before tax, %s tax\n", e.ID, e.PayeeName,
				ledger.Money(e.AmountBeforeTax), ledger.Money(e.TaxAmount))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Description, "description", "", "what was purchased (required)")
	f.StringVar(&in.PayeeName, "payee", "", "who was paid (default vendor name)")
	f.StringVar(&vendor, "vendor", "", "vendor id or name")
	f.StringVar(&invoiced, "invoiced", "", "invoice date MM/DD/YYYY [HH:MM]")
	f.StringVar(&in.TaxRegistrationNumber, "tax-reg", "", "payee tax registration number")
	f.StringVar(&beforeTax, "before-tax", "", "amount before tax")
	f.StringVar(&tax, "tax", "", "tax paid (required)")
	f.StringVar(&paid, "paid", "", "payment date MM/DD/YYYY [HH:MM] (required)")
	f.StringVar(&in.Category, "category", "", "expense category")
	f.StringVar(&in.Jurisdiction, "jurisdiction", "", "jurisdiction the tax was paid in")
	for _, name := range []string{"description", "tax", "paid"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newITCListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List input tax credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPAID\tPAYEE\tDESCRIPTION\tBEFORE TAX\tTAX\tCATEGORY\tJURISDICTION")
			for _, e := range s.book().ITCs() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, timestamp.Format(e.PaidAt), e.PayeeName, e.Description,
					ledger.Money(e.AmountBeforeTax), ledger.Money(e.TaxAmount), e.Category, e.Jurisdiction)
			}
			return tw.Flush()
		},
	}
}

func newITCDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an input tax credit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			e, _ := s.book().ITC(args[0])
			if err := s.book().DeleteITC(args[0]); err != nil {
				return err
			}
			if err := s.record(activity.ActionDeleteITC, e.ID, e.Description); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Deleted %s (%s)\n", e.ID, e.Description)
			return nil
		},
	}
}
