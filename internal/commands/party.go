package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freightbooks/taxledger/internal/activity"
	"github.com/freightbooks/taxledger/internal/ledger"
	"github.com/freightbooks/taxledger/internal/model"
)

func newPartyCommand(opts *rootOptions) *cobra.Command {
	partyCmd := &cobra.Command{
		Use:   "party",
		Short: "Manage clients, carriers and vendors",
	}
	partyCmd.AddCommand(
		newPartyAddCommand(opts),
		newPartyListCommand(opts),
		newPartyDeleteCommand(opts),
	)
	return partyCmd
}

func newPartyAddCommand(opts *rootOptions) *cobra.Command {
	var kind string
	var in model.PartyInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a party",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := model.ParsePartyKind(kind)
			if err != nil {
				return err
			}
			in.Kind = k

			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			p, err := s.book().AddParty(in)
			if err != nil {
				return err
			}
			if err := s.record(activity.ActionAddParty, p.ID, fmt.Sprintf("%s %s", p.Kind, p.Name)); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Added %s %s (%s)\n", p.Kind, p.Name, p.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", "", "client, carrier or vendor (required)")
	f.StringVar(&in.Name, "name", "", "display name (required)")
	f.StringVar(&in.ContactName, "contact", "", "contact person")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.TaxRegistrationNumber, "tax-reg", "", "tax registration number")
	f.StringVar(&in.Jurisdiction, "jurisdiction", "", "home jurisdiction")
	f.StringVar(&in.Category, "category", "", "default ITC category (vendors)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPartyListCommand(opts *rootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List parties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k model.PartyKind
			if kind != "" {
				var err error
				if k, err = model.ParsePartyKind(kind); err != nil {
					return err
				}
			}

			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tNAME\tJURISDICTION\tTAX REG")
			for _, p := range s.book().Parties(k) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Kind, p.Name, p.Jurisdiction, p.TaxRegistrationNumber)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list this kind")
	return cmd
}

func newPartyDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <party-id>",
		Short: "Delete a party that no entry references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			p, _ := s.book().Party(args[0])
			if _, err := s.book().DeleteParty(args[0]); err != nil {
				var ie *ledger.IntegrityError
				if errors.As(err, &ie) {
					return fmt.Errorf("%w; delete those entries first", err)
				}
				return err
			}
			if err := s.record(activity.ActionDeleteParty, args[0], fmt.Sprintf("%s %s", p.Kind, p.Name)); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Deleted %s %s\n", p.Kind, p.Name)
			return nil
		},
	}
}
