package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightbooks/taxledger/internal/activity"
	"github.com/freightbooks/taxledger/internal/config"
	"github.com/freightbooks/taxledger/internal/gitops"
	"github.com/freightbooks/taxledger/internal/jurisdiction"
	"github.com/freightbooks/taxledger/internal/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var name string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.bookDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, name, opts.actor, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&useGit, "git", true, "track the book in a git repository")

	return cmd
}

func runInit(out io.Writer, dir, name, actor string, useGit bool) error {
	if err := store.Init(dir, jurisdiction.DefaultTable()); err != nil {
		return err
	}

	cfg := config.Default(name)
	if useGit {
		if _, err := exec.LookPath("git"); err != nil {
			return fmt.Errorf("git not found (use --git=false to skip): %w", err)
		}
	} else {
		cfg.Git.AutoCommit = false
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := ".env\n.*.csv.*\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, store.ImportDir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	var hash string
	if useGit {
		if !gitops.IsRepo(dir) {
			if err := gitops.Init(dir, io.Discard); err != nil {
				return err
			}
		}
		var err error
		hash, err = gitops.CommitAll(dir, "init: Initialize "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
	}

	entry := activity.NewEntry(time.Now(), actor, activity.ActionInit, name, "initialized "+name)
	entry.CommitHash = hash
	if err := activity.Append(dir, entry); err != nil {
		return err
	}

	if hash != "" {
		fmt.Fprintf(out, "Initialized taxledger book at %s (%s)\n", dir, hash)
	} else {
		fmt.Fprintf(out, "Initialized taxledger book at %s\n", dir)
	}
	return nil
}
