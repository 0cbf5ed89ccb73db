package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freightbooks/taxledger/internal/activity"
	"github.com/freightbooks/taxledger/internal/importer"
	"github.com/freightbooks/taxledger/internal/model"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import load sheets",
		Long: "Import load sheets. Without arguments every CSV in the book's import/\n" +
			"directory is imported and moved to import/processed/. A file is\n" +
			"imported completely or not at all.",
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q (available: %s)", format,
					strings.Join(importer.DefaultRegistry().Formats(), ", "))
			}

			s, err := openSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var files []importer.FileInfo
			fromInbox := len(args) == 0
			if fromInbox {
				if files, err = importer.Scan(s.dir); err != nil {
					return err
				}
				if len(files) == 0 {
					fmt.Fprintln(s.out, "Nothing to import")
					return nil
				}
			} else {
				for _, a := range args {
					files = append(files, importer.FileInfo{Name: filepath.Base(a), Path: a})
				}
			}

			for _, fi := range files {
				n, err := s.importFile(parser, fi.Path)
				if err != nil {
					return fmt.Errorf("importing %s: %w", fi.Name, err)
				}
				if fromInbox {
					// The file leaves the inbox only once its loads are on disk.
					if err := s.store.Save(); err != nil {
						return fmt.Errorf("saving book: %w", err)
					}
					if err := importer.MarkProcessed(s.dir, fi.Name); err != nil {
						return err
					}
				}
				if err := s.record(activity.ActionImport, fi.Name, fmt.Sprintf("%d loads from %s", n, fi.Name)); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Imported %d loads from %s\n", n, fi.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "loadsheet", "file format")
	return cmd
}

// importFile adds every load in path. On the first failing row the loads
// already added from this file are removed again.
func (s *session) importFile(parser importer.Parser, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	inputs, err := parser.Parse(f)
	if err != nil {
		return 0, err
	}

	b := s.book()
	var added []string
	rollback := func() {
		for _, entryID := range added {
			if err := b.DeleteLoad(entryID); err != nil {
				s.log.Error("rolling back import", zap.String("entry", entryID), zap.Error(err))
			}
		}
	}

	for i, in := range inputs {
		if err := s.resolveLoadParties(&in); err != nil {
			rollback()
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		s.applyLoadDefaults(&in)

		e, err := b.AddLoad(in)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("row %d (load %s): %w", i+2, in.LoadNumber, err)
		}
		added = append(added, e.ID)
	}
	return len(added), nil
}

func (s *session) resolveLoadParties(in *model.LoadInput) error {
	var err error
	if in.ClientID, err = s.resolveParty(model.PartyClient, in.ClientID); err != nil {
		return err
	}
	in.CarrierID, err = s.resolveParty(model.PartyCarrier, in.CarrierID)
	return err
}
