package snapshotfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pricefeed-service/internal/domain"
)

// Store persists the aggregated snapshot as a JSON file next to the service.
// Save writes to a temp file and renames it into place so a crashed write can
// never leave a half-written snapshot for the cache tier to read.
type Store struct {
	Path string
}

func New(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) Save(_ context.Context, snap domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
