package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/freightbooks/taxledger/internal/jurisdiction"
	"github.com/freightbooks/taxledger/internal/ledger"
)

// Book directory layout.
const (
	PartiesFile  = "parties.csv"
	LoadsFile    = "loads.csv"
	ITCsFile     = "itcs.csv"
	ImportDir    = "import"
	ProcessedDir = "import/processed"
	LogsDir      = "logs"
)

// ErrNotABook is returned by Open when dir has no jurisdiction table.
var ErrNotABook = errors.New("not a taxledger book (run 'taxledger init')")

// Store persists a ledger.Book as CSV files in a book directory.
type Store struct {
	dir  string
	book *ledger.Book
	log  *zap.Logger
}

// Init lays out an empty book in dir, seeded with rates. Existing ledger
// files are left untouched.
func Init(dir string, rates *jurisdiction.Table) error {
	for _, d := range []string{dir, filepath.Join(dir, ProcessedDir), filepath.Join(dir, LogsDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, jurisdiction.FileName)); errors.Is(err, fs.ErrNotExist) {
		if err := writeAtomic(dir, jurisdiction.FileName, func(w io.Writer) error {
			return jurisdiction.WriteRates(w, rates.All())
		}); err != nil {
			return err
		}
	}

	s := &Store{dir: dir, book: ledger.NewBook(rates, nil), log: zap.NewNop()}
	for _, name := range []string{PartiesFile, LoadsFile, ITCsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			continue
		}
		if err := s.saveFile(name); err != nil {
			return err
		}
	}
	return nil
}

// Open reads the book in dir.
func Open(dir string, log *zap.Logger, opts ...ledger.Option) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store")

	rates, err := jurisdiction.Load(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotABook)
	}
	if err != nil {
		return nil, err
	}

	var snap ledger.Snapshot
	if err := readFile(dir, PartiesFile, func(r io.Reader) (err error) {
		snap.Parties, err = ReadParties(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(dir, LoadsFile, func(r io.Reader) (err error) {
		snap.Loads, err = ReadLoads(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(dir, ITCsFile, func(r io.Reader) (err error) {
		snap.ITCs, err = ReadITCs(r)
		return err
	}); err != nil {
		return nil, err
	}

	book := ledger.NewBook(rates, log, opts...)
	if err := book.Restore(snap); err != nil {
		return nil, fmt.Errorf("restoring book from %s: %w", dir, err)
	}

	log.Debug("opened book",
		zap.String("dir", dir),
		zap.Int("parties", len(snap.Parties)),
		zap.Int("loads", len(snap.Loads)),
		zap.Int("itcs", len(snap.ITCs)),
	)
	return &Store{dir: dir, book: book, log: log}, nil
}

// Dir returns the book directory.
func (s *Store) Dir() string {
	return s.dir
}

// Book returns the in-memory ledger.
func (s *Store) Book() *ledger.Book {
	return s.book
}

// Save rewrites every ledger file from the current book state.
func (s *Store) Save() error {
	for _, name := range []string{jurisdiction.FileName, PartiesFile, LoadsFile, ITCsFile} {
		if err := s.saveFile(name); err != nil {
			return err
		}
	}
	s.log.Debug("saved book", zap.String("dir", s.dir))
	return nil
}

func (s *Store) saveFile(name string) error {
	snap := s.book.Snapshot()
	var write func(io.Writer) error
	switch name {
	case jurisdiction.FileName:
		write = func(w io.Writer) error { return jurisdiction.WriteRates(w, s.book.Rates().All()) }
	case PartiesFile:
		write = func(w io.Writer) error { return WriteParties(w, snap.Parties) }
	case LoadsFile:
		write = func(w io.Writer) error { return WriteLoads(w, snap.Loads) }
	case ITCsFile:
		write = func(w io.Writer) error { return WriteITCs(w, snap.ITCs) }
	default:
		return fmt.Errorf("unknown book file %q", name)
	}
	return writeAtomic(s.dir, name, write)
}

func readFile(dir, name string, read func(io.Reader) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := read(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes dir/name through a temp file and rename, so readers
// never see a partial file.
func writeAtomic(dir, name string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
