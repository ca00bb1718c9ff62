package am

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/logger"
)

// backupCount is the number of rotated backups kept next to a config file
const backupCount = 3

// backupPath returns path.backN
func backupPath(path string, n int) string {
	return path + ".back" + string(rune('0'+n))
}

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Delete oldest backup if exists
	oldest := backupPath(configPath, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		// Backup rotation failures never block the write
		logger.Warnw("Failed to delete old config backup", logger.FieldPath, oldest, logger.FieldError, err)
	}

	// .back2 -> .back3, .back1 -> .back2
	for n := backupCount - 1; n >= 1; n-- {
		from := backupPath(configPath, n)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupPath(configPath, n+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", filepath.Base(from))
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(backupPath(configPath, 1), content, 0644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// Save writes cfg as TOML to path, backing up any existing file first
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.WrapIOf(err, "failed to create directory for %s", path)
	}
	if err := createBackup(path); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapIOf(err, "failed to write config %s", path)
	}
	return nil
}

// WriteDefault writes a starter resgen.toml holding the default configuration,
// with pkg filled in when given
func WriteDefault(path, pkg string) error {
	cfg := Default()
	cfg.Output.Package = pkg
	return Save(cfg, path)
}

// IsBackupFile reports whether path is one of the rotated config backups
func IsBackupFile(path string) bool {
	base := filepath.Base(path)
	for n := 1; n <= backupCount; n++ {
		if base == backupPath(ConfigFileName, n) {
			return true
		}
	}
	return false
}
