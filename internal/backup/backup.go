// Package backup snapshots the JSON state files into a configured directory
// so state survives the ephemeral host. Snapshots are plain file copies into
// timestamped subdirectories; restore pulls the most recent one back.
//
// Everything here is fail-soft: an unconfigured or unwritable target
// disables backups without touching the poll loop.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const snapshotTimeFormat = "20060102-150405"

// ErrNoSnapshots is returned by Restore when the target holds no snapshots.
var ErrNoSnapshots = errors.New("backup: no snapshots available")

// Manager copies state files between the data directory and the backup
// directory.
type Manager struct {
	dataDir      string
	backupDir    string
	files        []string
	maxSnapshots int
	logger       zerolog.Logger
	now          func() time.Time
}

// New constructs a Manager. files are names relative to dataDir.
func New(dataDir, backupDir string, files []string, maxSnapshots int, logger zerolog.Logger) (*Manager, error) {
	if backupDir == "" {
		return nil, errors.New("backup: directory not configured")
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	if maxSnapshots <= 0 {
		maxSnapshots = 10
	}
	return &Manager{
		dataDir:      dataDir,
		backupDir:    backupDir,
		files:        files,
		maxSnapshots: maxSnapshots,
		logger:       logger.With().Str("component", "backup").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Snapshot copies every existing state file into a new timestamped snapshot
// directory and prunes old snapshots. It returns the snapshot name and how
// many files were copied. Poll cycles may run concurrently, so each file is
// read in one shot rather than streamed.
func (m *Manager) Snapshot() (string, int, error) {
	name := m.now().Format(snapshotTimeFormat)
	dir := filepath.Join(m.backupDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create snapshot directory: %w", err)
	}

	copied := 0
	for _, file := range m.files {
		data, err := os.ReadFile(filepath.Join(m.dataDir, file))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return name, copied, fmt.Errorf("read %s: %w", file, err)
		}
		if err := os.WriteFile(filepath.Join(dir, file), data, 0o644); err != nil {
			return name, copied, fmt.Errorf("write snapshot %s: %w", file, err)
		}
		copied++
	}

	m.prune()
	m.logger.Info().Str("snapshot", name).Int("files", copied).Msg("snapshot written")
	return name, copied, nil
}

// Restore copies the files of the most recent snapshot back into the data
// directory, overwriting current state. It returns the snapshot name and the
// number of restored files.
func (m *Manager) Restore() (string, int, error) {
	snapshots, err := m.list()
	if err != nil {
		return "", 0, err
	}
	if len(snapshots) == 0 {
		return "", 0, ErrNoSnapshots
	}

	name := snapshots[len(snapshots)-1]
	dir := filepath.Join(m.backupDir, name)

	restored := 0
	for _, file := range m.files {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return name, restored, fmt.Errorf("read snapshot %s: %w", file, err)
		}
		if err := os.WriteFile(filepath.Join(m.dataDir, file), data, 0o644); err != nil {
			return name, restored, fmt.Errorf("restore %s: %w", file, err)
		}
		restored++
	}

	m.logger.Info().Str("snapshot", name).Int("files", restored).Msg("snapshot restored")
	return name, restored, nil
}

// list returns snapshot names sorted oldest first. The timestamp format
// sorts lexically.
func (m *Manager) list() ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Manager) prune() {
	snapshots, err := m.list()
	if err != nil {
		m.logger.Warn().Err(err).Msg("snapshot prune skipped")
		return
	}
	for len(snapshots) > m.maxSnapshots {
		victim := snapshots[0]
		snapshots = snapshots[1:]
		if err := os.RemoveAll(filepath.Join(m.backupDir, victim)); err != nil {
			m.logger.Warn().Err(err).Str("snapshot", victim).Msg("failed to prune snapshot")
		}
	}
}
