package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sandgraal/retrodex-data/internal/catalog"
)

const (
	snapshotsDirName   = "snapshots"
	snapshotPrefix     = "catalog-"
	snapshotExt        = ".json"
	snapshotTimeFormat = "20060102T150405.000000000Z"
)

// WriteSnapshot serializes the full catalog map to a timestamp-named JSON
// file under <dataDir>/snapshots/ and returns its path. File names sort
// monotonically by run time. Snapshot files are immutable once written;
// a write failure surfaces to the caller because a silently missing
// snapshot would break the store's durability contract.
func (s *Store) WriteSnapshot(dataDir string) (string, error) {
	dir := filepath.Join(dataDir, snapshotsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshots dir: %w", err)
	}

	data, err := json.MarshalIndent(s.Entries(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize catalog: %w", err)
	}

	stamp := time.Now().UTC().Format(snapshotTimeFormat)
	path := filepath.Join(dir, snapshotPrefix+stamp+snapshotExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return path, nil
}

// LoadLatest hydrates the store from the newest snapshot under
// <dataDir>/snapshots/. A missing snapshots directory or an empty one is
// not an error — the store simply starts empty.
func (s *Store) LoadLatest(dataDir string) (string, error) {
	path, err := LatestSnapshotPath(dataDir)
	if err != nil || path == "" {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var entries map[string]catalog.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return "", fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if entries == nil {
		entries = make(map[string]catalog.Entry)
	}

	s.replaceAll(entries)
	return path, nil
}

// LatestSnapshotPath returns the newest snapshot file path, or "" when no
// snapshot has been written yet.
func LatestSnapshotPath(dataDir string) (string, error) {
	paths, err := ListSnapshots(dataDir)
	if err != nil || len(paths) == 0 {
		return "", err
	}
	return paths[len(paths)-1], nil
}

// ListSnapshots returns all snapshot file paths in ascending run order.
func ListSnapshots(dataDir string) ([]string, error) {
	dir := filepath.Join(dataDir, snapshotsDirName)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshots dir: %w", err)
	}

	var paths []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	// Timestamp names sort lexicographically in run order
	sort.Strings(paths)
	return paths, nil
}
