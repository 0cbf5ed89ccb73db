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

func newLoadCommand(opts *rootOptions) *cobra.Command {
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Record and review loads",
	}
	loadCmd.AddCommand(
		newLoadAddCommand(opts),
		newLoadListCommand(opts),
		newLoadDeleteCommand(opts),
	)
	return loadCmd
}

type loadFlags struct {
	number, delivered         string
	client, carrier           string
	taxJurisdiction, delivery string
	clientBase, carrierAllIn  string
}

func newLoadAddCommand(opts *rootOptions) *cobra.Command {
	var lf loadFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a delivered load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			in, err := lf.input(s)
			if err != nil {
				return err
			}

			e, err := s.book().AddLoad(in)
			if err != nil {
				return err
			}
			details := fmt.Sprintf("%s %s client tax %s carrier tax %s", e.LoadNumber, e.TaxJurisdiction,
				ledger.Money(e.ClientTax), ledger.Money(e.CarrierTax))
			if err := s.record(activity.ActionAddLoad, e.ID, details); err != nil {
				return err
			}
			printLoad(s, e)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&lf.number, "number", "", "load number (required)")
	f.StringVar(&lf.delivered, "delivered", "", "delivery time MM/DD/YYYY HH:MM (required)")
	f.StringVar(&lf.client, "client", "", "client id or name (required)")
	f.StringVar(&lf.carrier, "carrier", "", "carrier id or name (required)")
	f.StringVar(&lf.taxJurisdiction, "tax-jurisdiction", "", "jurisdiction the tax rate comes from (default from config)")
	f.StringVar(&lf.delivery, "delivery-jurisdiction", "", "where the load was delivered (default tax jurisdiction)")
	f.StringVar(&lf.clientBase, "base", "", "client base amount, before tax (required)")
	f.StringVar(&lf.carrierAllIn, "all-in", "", "carrier all-in amount, tax included (required)")
	for _, name := range []string{"number", "delivered", "client", "carrier", "base", "all-in"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (lf loadFlags) input(s *session) (model.LoadInput, error) {
	delivered, err := timestamp.Parse(lf.delivered)
	if err != nil {
		return model.LoadInput{}, err
	}
	base, err := parseAmount("base", lf.clientBase)
	if err != nil {
		return model.LoadInput{}, err
	}
	allIn, err := parseAmount("all-in", lf.carrierAllIn)
	if err != nil {
		return model.LoadInput{}, err
	}

	in := model.LoadInput{
		LoadNumber:           lf.number,
		DeliveredAt:          delivered,
		TaxJurisdiction:      lf.taxJurisdiction,
		DeliveryJurisdiction: lf.delivery,
		ClientBaseAmount:     base,
		CarrierAllInAmount:   allIn,
	}
	if in.ClientID, err = s.resolveParty(model.PartyClient, lf.client); err != nil {
		return model.LoadInput{}, err
	}
	if in.CarrierID, err = s.resolveParty(model.PartyCarrier, lf.carrier); err != nil {
		return model.LoadInput{}, err
	}
	s.applyLoadDefaults(&in)
	return in, nil
}

func (s *session) applyLoadDefaults(in *model.LoadInput) {
	if in.TaxJurisdiction == "" {
		in.TaxJurisdiction = s.cfg.Ledger.DefaultJurisdiction
	}
	if in.DeliveryJurisdiction == "" {
		in.DeliveryJurisdiction = in.TaxJurisdiction
	}
}

func printLoad(s *session, e model.LoadEntry) {
	fmt.Fprintf(s.out, "Recorded %s (load %s, %s @ %s%%)\n", e.ID, e.LoadNumber, e.TaxJurisdiction, ledger.Percent(e.TaxRate))
	fmt.Fprintf(s.out, "  client: base %s + tax %s = %s\n", ledger.Money(e.ClientBaseAmount), ledger.Money(e.ClientTax), ledger.Money(e.ClientTotal))
	fmt.Fprintf(s.out, "  carrier: all-in %s = pre-tax %s + tax %s\n", ledger.Money(e.CarrierAllInAmount), ledger.Money(e.CarrierPreTaxAmount), ledger.Money(e.CarrierTax))
	fmt.Fprintf(s.out, "  net payable %s, profit %s\n", ledger.Money(e.NetPayable), ledger.Money(e.Profit))
}

func newLoadListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			b := s.book()

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLOAD\tDELIVERED\tCLIENT\tCARRIER\tJURISDICTION\tRATE (%)\tCLIENT TAX\tCARRIER TAX\tNET PAYABLE")
			for _, e := range b.Loads() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.LoadNumber, timestamp.Format(e.DeliveredAt),
					b.PartyName(e.ClientID), b.PartyName(e.CarrierID), e.TaxJurisdiction,
					ledger.Percent(e.TaxRate), ledger.Money(e.ClientTax), ledger.Money(e.CarrierTax), ledger.Money(e.NetPayable))
			}
			return tw.Flush()
		},
	}
}

func newLoadDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a load entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			e, _ := s.book().Load(args[0])
			if err := s.book().DeleteLoad(args[0]); err != nil {
				return err
			}
			if err := s.record(activity.ActionDeleteLoad, e.ID, e.LoadNumber); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Deleted %s (load %s)\n", e.ID, e.LoadNumber)
			return nil
		},
	}
}
