package store

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/yiyi75/careerquest/internal/model"
)

type failingStore struct {
	loadErr error
	saveErr error
	saved   *model.Snapshot
}

func (f *failingStore) Load() (*model.Snapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.saved == nil {
		return nil, ErrNotFound
	}
	return f.saved.Clone(), nil
}

func (f *failingStore) Save(snap *model.Snapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = snap.Clone()
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFallback_LoadFallsBackOnError(t *testing.T) {
	secondary := NewMemoryStore()
	if err := secondary.Save(sampleSnapshot()); err != nil {
		t.Fatalf("seed secondary: %v", err)
	}
	fb := NewFallback(&failingStore{loadErr: errors.New("connection refused")}, secondary, quietLogger())

	got, err := fb.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Quest == nil || got.Quest.Title != "Become a Writer" {
		t.Fatalf("expected the local copy, got %+v", got.Quest)
	}
}

func TestFallback_SaveDegradesSilently(t *testing.T) {
	secondary := NewMemoryStore()
	fb := NewFallback(&failingStore{saveErr: errors.New("connection refused")}, secondary, quietLogger())

	if err := fb.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save should degrade, not fail: %v", err)
	}
	if _, err := secondary.Load(); err != nil {
		t.Fatalf("secondary should hold the snapshot: %v", err)
	}
}

func TestFallback_SaveMirrorsToSecondary(t *testing.T) {
	primary := &failingStore{}
	secondary := NewMemoryStore()
	fb := NewFallback(primary, secondary, quietLogger())

	if err := fb.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if primary.saved == nil {
		t.Fatalf("primary should hold the snapshot")
	}
	if _, err := secondary.Load(); err != nil {
		t.Fatalf("secondary mirror missing: %v", err)
	}
}
