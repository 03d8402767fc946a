package state

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cpcf/t4toolbox/write"
)

// CleanupMode decides what happens to files an input no longer generates.
type CleanupMode int

const (
	CleanupModeDelete CleanupMode = iota
	CleanupModeBackup
	CleanupModeReport
	CleanupModeDisabled
)

var cleanupModeNames = [...]string{
	CleanupModeDelete:   "delete",
	CleanupModeBackup:   "backup",
	CleanupModeReport:   "report",
	CleanupModeDisabled: "disabled",
}

func (cm CleanupMode) String() string {
	if cm < 0 || int(cm) >= len(cleanupModeNames) {
		return "unknown"
	}
	return cleanupModeNames[cm]
}

// ParseCleanupMode accepts the names returned by String, in any case.
func ParseCleanupMode(value string) (CleanupMode, error) {
	for mode, name := range cleanupModeNames {
		if strings.EqualFold(value, name) {
			return CleanupMode(mode), nil
		}
	}
	return 0, fmt.Errorf("unknown cleanup mode %q", value)
}

// CleanupAction is what happened to one stale file.
type CleanupAction int

const (
	CleanupActionDelete CleanupAction = iota
	CleanupActionBackup
	CleanupActionSkip
)

func (ca CleanupAction) String() string {
	switch ca {
	case CleanupActionDelete:
		return "delete"
	case CleanupActionBackup:
		return "backup"
	case CleanupActionSkip:
		return "skip"
	}
	return "unknown"
}

// CleanupResult is the outcome for one stale file.
type CleanupResult struct {
	Path       string        `json:"path"`
	Action     CleanupAction `json:"action"`
	Reason     string        `json:"reason,omitempty"`
	BackupPath string        `json:"backup_path,omitempty"`
	Error      string        `json:"error,omitempty"`
}

const (
	reasonPreserved = "preserved file"
	reasonIgnored   = "matches ignore pattern"
	reasonMissing   = "already removed"
	reasonModified  = "modified since generation"
	reasonReport    = "report only"
	reasonDisabled  = "cleanup disabled"
)

type cleaner struct {
	mode      CleanupMode
	backupDir string
	patterns  []string
	writer    write.Writer
	dryRun    bool
	logger    *slog.Logger
}

// clean handles a file that was generated before but not in the current run.
// Files edited since they were generated are never removed.
func (c *cleaner) clean(path, key string, entry Entry) CleanupResult {
	result := CleanupResult{Path: path, Action: CleanupActionSkip}

	switch {
	case entry.Preserve:
		result.Reason = reasonPreserved
	case c.ignored(key):
		result.Reason = reasonIgnored
	case !c.writer.Exists(path):
		result.Reason = reasonMissing
	case c.mode == CleanupModeReport:
		result.Reason = reasonReport
	case c.mode == CleanupModeDisabled:
		result.Reason = reasonDisabled
	}
	if result.Reason != "" {
		return result
	}

	hash, err := hashFile(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if hash != entry.Hash {
		result.Reason = reasonModified
		return result
	}

	if c.mode == CleanupModeBackup {
		result.Action = CleanupActionBackup
		if !c.dryRun {
			backupPath, err := write.Backup(path, c.backupDir)
			if err != nil {
				result.Error = err.Error()
				return result
			}
			result.BackupPath = backupPath
		}
	} else {
		result.Action = CleanupActionDelete
	}

	if err := c.writer.Remove(path); err != nil {
		result.Error = err.Error()
		return result
	}
	c.logger.Info("removed stale output", "path", path, "action", result.Action.String())
	return result
}

func (c *cleaner) ignored(key string) bool {
	for _, pattern := range c.patterns {
		if matched, err := filepath.Match(pattern, filepath.Base(filepath.FromSlash(key))); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(pattern, key); err == nil && matched {
			return true
		}
	}
	return false
}
