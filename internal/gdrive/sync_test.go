package gdrive

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type fakeDrive struct {
	remote  map[string]string
	finds   []string
	creates []string
	updates []string
	findErr error
}

func (f *fakeDrive) find(name string) (string, error) {
	f.finds = append(f.finds, name)
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.remote[name], nil
}

func (f *fakeDrive) create(name string, _ io.Reader) (string, error) {
	f.creates = append(f.creates, name)
	return "created-" + name, nil
}

func (f *fakeDrive) update(fileID string, _ io.Reader) error {
	f.updates = append(f.updates, fileID)
	return nil
}

func archiveFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clover.db")
	if err := os.WriteFile(path, []byte("db"), 0o644); err != nil {
		t.Fatalf("write archive file: %v", err)
	}
	return path
}

func newTestSyncer(files driveAPI) *Syncer {
	return &Syncer{files: files, fileIDs: make(map[string]string)}
}

func TestSyncCreatesThenUpdates(t *testing.T) {
	fake := &fakeDrive{remote: map[string]string{}}
	s := newTestSyncer(fake)
	path := archiveFile(t)

	if err := s.Sync(path, "2026-08-31"); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if err := s.Sync(path, "2026-08-31"); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	if len(fake.creates) != 1 || fake.creates[0] != "clover-reports-2026-08-31" {
		t.Fatalf("unexpected creates %v", fake.creates)
	}
	if len(fake.updates) != 1 || fake.updates[0] != "created-clover-reports-2026-08-31" {
		t.Fatalf("unexpected updates %v", fake.updates)
	}
	if len(fake.finds) != 1 {
		t.Fatalf("expected 1 remote lookup, got %d", len(fake.finds))
	}
}

func TestSyncReusesRemoteArchiveAfterRestart(t *testing.T) {
	fake := &fakeDrive{remote: map[string]string{
		"clover-reports-2026-08-31": "existing-id",
	}}
	s := newTestSyncer(fake)
	path := archiveFile(t)

	if err := s.Sync(path, "2026-08-31"); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if len(fake.creates) != 0 {
		t.Fatalf("expected no creates for existing archive, got %v", fake.creates)
	}
	if len(fake.updates) != 1 || fake.updates[0] != "existing-id" {
		t.Fatalf("unexpected updates %v", fake.updates)
	}

	// Second sync hits the cache, no further lookup.
	if err := s.Sync(path, "2026-08-31"); err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if len(fake.finds) != 1 {
		t.Fatalf("expected 1 remote lookup, got %d", len(fake.finds))
	}
}

func TestSyncSeparateDates(t *testing.T) {
	fake := &fakeDrive{remote: map[string]string{}}
	s := newTestSyncer(fake)
	path := archiveFile(t)

	if err := s.Sync(path, "2026-08-30"); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if err := s.Sync(path, "2026-08-31"); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if len(fake.creates) != 2 {
		t.Fatalf("expected one archive per date, got %v", fake.creates)
	}
}

func TestSyncLookupFailurePropagates(t *testing.T) {
	fake := &fakeDrive{findErr: errors.New("drive lookup: 503")}
	s := newTestSyncer(fake)

	err := s.Sync(archiveFile(t), "2026-08-31")
	if err == nil {
		t.Fatal("expected lookup error")
	}
	if len(fake.creates) != 0 {
		t.Fatalf("must not create on lookup failure, got %v", fake.creates)
	}
}

func TestSyncMissingLocalFile(t *testing.T) {
	s := newTestSyncer(&fakeDrive{})
	if err := s.Sync(filepath.Join(t.TempDir(), "missing.db"), "2026-08-31"); err == nil {
		t.Fatal("expected error for missing local file")
	}
}
