package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freightbooks/taxledger/internal/activity"
	"github.com/freightbooks/taxledger/internal/config"
	"github.com/freightbooks/taxledger/internal/gitops"
	"github.com/freightbooks/taxledger/internal/id"
	"github.com/freightbooks/taxledger/internal/ledger"
	"github.com/freightbooks/taxledger/internal/logger"
	"github.com/freightbooks/taxledger/internal/model"
	"github.com/freightbooks/taxledger/internal/store"
)

// session is an opened book plus everything a command needs to change it.
type session struct {
	dir       string
	actor     string
	cfg       *config.Config
	log       *zap.Logger
	store     *store.Store
	committer gitops.Committer
	out       io.Writer
}

func openSession(opts *rootOptions, out io.Writer) (*session, error) {
	dir, err := filepath.Abs(opts.bookDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, store.ErrNotABook)
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dir, log)
	if err != nil {
		return nil, err
	}

	return &session{
		dir:   dir,
		actor: opts.actor,
		cfg:   cfg,
		log:   log,
		store: st,
		committer: gitops.Committer{
			Dir:         dir,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
			Enabled:     cfg.Git.AutoCommit,
		},
		out: out,
	}, nil
}

func (s *session) book() *ledger.Book {
	return s.store.Book()
}

// record persists the book, commits it and appends an activity row.
// A failed commit or log write is reported but does not undo the save.
func (s *session) record(action activity.Action, entityID, details string) error {
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("saving book: %w", err)
	}

	entry := activity.NewEntry(time.Now(), s.actor, action, entityID, details)
	msg := strings.ReplaceAll(string(action), "_", " ")
	if entityID != "" {
		msg += ": " + entityID
	}
	hash, err := s.committer.Commit(msg)
	if err != nil {
		s.log.Warn("auto-commit failed", zap.String("action", string(action)), zap.Error(err))
	}
	entry.CommitHash = hash

	if err := activity.Append(s.dir, entry); err != nil {
		s.log.Warn("writing activity log failed", zap.Error(err))
	}
	return nil
}

// resolveParty accepts a party id or an exact, case-insensitive name among
// parties of kind. Unknown references are passed through unchanged so the
// book reports them.
func (s *session) resolveParty(kind model.PartyKind, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || id.ValidPartyID(ref) {
		return ref, nil
	}

	var matches []model.Party
	for _, p := range s.book().Parties(kind) {
		if strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no %s named %q", ledger.ErrPartyNotFound, kind, ref)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("%d %ss are named %q; use the party id", len(matches), kind, ref)
	}
}

func parseAmount(flag, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--%s: invalid amount %q", flag, s)
	}
	return d, nil
}

// parseRate accepts a fraction ("0.13") or a percentage ("13%").
func parseRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--rate: invalid rate %q", s)
	}
	if percent {
		d = d.Shift(-2)
	}
	return d, nil
}
