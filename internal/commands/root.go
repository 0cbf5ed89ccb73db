package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build metadata, set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	bookDir string
	actor   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "taxledger",
		Short:   "Multi-jurisdiction sales tax ledger for freight brokerage",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.bookDir, "book", envOr("TAXLEDGER_BOOK", "."), "book directory")
	rootCmd.PersistentFlags().StringVar(&opts.actor, "actor", envOr("USER", "taxledger"), "name recorded in the activity log")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newPartyCommand(opts),
		newJurisdictionCommand(opts),
		newLoadCommand(opts),
		newITCCommand(opts),
		newTotalsCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newHistoryCommand(opts),
	)

	return rootCmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
