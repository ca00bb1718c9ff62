package rclass

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/logger"
)

// change is one file replaced or removed by a transaction
type change struct {
	path string
	// staged content; empty when path is being removed
	tmp string
	// the previous file, moved aside while the transaction commits
	backup string
	placed bool
}

// transaction stages artifacts in temporary siblings and moves them into
// place together. Either every change lands or the previous files are put
// back; temporary files never outlive the transaction.
type transaction struct {
	changes []*change
}

func siblingName(path, suffix string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+suffix)
}

// stage writes data to a temporary sibling of path
func (tx *transaction) stage(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapIOf(err, "failed to create directory %s", dir)
	}
	if info, err := os.Lstat(path); err == nil && info.IsDir() {
		return errors.Mark(errors.Newf("cannot replace %s: is a directory", path), errors.ErrIO)
	}

	tmp := siblingName(path, ".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.WrapIOf(err, "failed to create %s", tmp)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return errors.WrapIOf(err, "failed to write %s", path)
	}
	if err = f.Sync(); err != nil {
		return errors.WrapIOf(err, "failed to sync %s", path)
	}
	if err = f.Close(); err != nil {
		return errors.WrapIOf(err, "failed to close %s", path)
	}
	tx.changes = append(tx.changes, &change{path: path, tmp: tmp})
	return nil
}

// remove schedules path for deletion on commit
func (tx *transaction) remove(path string) {
	tx.changes = append(tx.changes, &change{path: path})
}

func (c *change) apply() error {
	if _, err := os.Lstat(c.path); err == nil {
		backup := siblingName(c.path, ".old")
		if err := os.Rename(c.path, backup); err != nil {
			return errors.WrapIOf(err, "failed to move %s aside", c.path)
		}
		c.backup = backup
	} else if !os.IsNotExist(err) {
		return errors.WrapIOf(err, "failed to stat %s", c.path)
	}
	if c.tmp != "" {
		if err := os.Rename(c.tmp, c.path); err != nil {
			return errors.WrapIOf(err, "failed to move %s into place", c.path)
		}
	}
	c.placed = true
	return nil
}

// commit moves every staged file into place and deletes every scheduled
// removal. On failure the files already touched are restored.
func (tx *transaction) commit() error {
	for _, c := range tx.changes {
		if err := c.apply(); err != nil {
			tx.rollback()
			return err
		}
	}
	for _, c := range tx.changes {
		if c.backup == "" {
			continue
		}
		if err := os.Remove(c.backup); err != nil {
			logger.Warnw("failed to delete replaced file", logger.FieldPath, c.backup, logger.FieldError, err)
		}
	}
	tx.changes = nil
	return nil
}

// rollback undoes applied changes in reverse order and drops staged files
func (tx *transaction) rollback() {
	for i := len(tx.changes) - 1; i >= 0; i-- {
		c := tx.changes[i]
		if c.placed && c.tmp != "" {
			os.Remove(c.path)
		}
		if c.backup != "" {
			if err := os.Rename(c.backup, c.path); err != nil {
				logger.Warnw("failed to restore file", logger.FieldPath, c.path, logger.FieldError, err)
			}
		}
		if c.tmp != "" && !c.placed {
			os.Remove(c.tmp)
		}
	}
	tx.changes = nil
}

// discard drops staged files without touching their destinations
func (tx *transaction) discard() {
	for _, c := range tx.changes {
		if c.tmp != "" {
			os.Remove(c.tmp)
		}
	}
	tx.changes = nil
}
