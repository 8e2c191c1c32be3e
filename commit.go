package i18nmig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaguanLabs/i18nmig/store"
	"github.com/otiai10/copy"
)

// errDirty marks a file skipped because it has uncommitted changes.
var errDirty = errors.New("file has uncommitted changes")

// commit replaces unit's file with output. The output must parse cleanly
// with the same processor; otherwise nothing is written. In dry-run mode
// every check still runs but the file is left alone.
func (c *passConfig) commit(ctx context.Context, proc SourceProcessor, unit SourceUnit, output []byte) error {
	if c.dirty != nil {
		dirty, err := c.dirty.IsDirty(unit.Path)
		if err != nil {
			return fmt.Errorf("checking working tree: %w", err)
		}
		if dirty {
			return errDirty
		}
	}

	if err := proc.Validate(ctx, SourceUnit{Path: unit.Path, Source: output}); err != nil {
		return &WriteError{
			Path:    unit.Path,
			Message: "rewritten source does not parse",
			Cause:   err,
		}
	}

	if c.dryRun {
		return nil
	}

	info, err := os.Stat(unit.Path)
	if err != nil {
		return &WriteError{Path: unit.Path, Message: "stat failed", Cause: err}
	}

	if c.backupDir != "" {
		dest := filepath.Join(c.backupDir, filepath.FromSlash(relPath(c.root, unit.Path)))
		if err := copy.Copy(unit.Path, dest, copy.Options{PreserveTimes: true}); err != nil {
			return &WriteError{Path: unit.Path, Message: "backup failed", Cause: err}
		}
	}

	if err := store.WriteFileAtomic(unit.Path, output, info.Mode().Perm()); err != nil {
		return &WriteError{Path: unit.Path, Message: "replace failed", Cause: err}
	}
	return nil
}
