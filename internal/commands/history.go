package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightbooks/taxledger/internal/activity"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var kind string
	var limit int

	cmd := &cobra.Command{
		Use:   "history [entity-id]",
		Short: "Show the activity log",
		Long: "Show the activity log, oldest first. --kind narrows it to one kind of\n" +
			"record (book, party, jurisdiction, load, itc, file); an entity id narrows\n" +
			"it to one record.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var k activity.EntityKind
			if kind != "" {
				if k, err = activity.ParseEntityKind(kind); err != nil {
					return err
				}
			}
			var entityID string
			if len(args) == 1 {
				entityID = args[0]
			}

			entries, err := activity.Read(s.dir)
			if err != nil {
				return err
			}
			entries = activity.Filter(entries, k, entityID)
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if len(entries) == 0 {
				fmt.Fprintln(s.out, "No activity")
				return nil
			}

			w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTOR\tACTION\tENTITY\tCOMMIT\tDETAILS")
			for _, e := range entries {
				commit := e.CommitHash
				if commit == "" {
					commit = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Local().Format(time.DateTime), e.Actor, e.Action, e.Entity, commit, e.Details)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only entries about this kind of record")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n entries")
	return cmd
}
