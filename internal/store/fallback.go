package store

import (
	"errors"
	"log"

	"github.com/yiyi75/careerquest/internal/model"
)

// Fallback chains a remote primary with a local secondary. Saves that fail
// on the primary land on the secondary instead of surfacing: losing the
// remote copy is a degradation, not an error the engine should see.
type Fallback struct {
	primary   Store
	secondary Store
	logger    *log.Logger
}

func NewFallback(primary, secondary Store, logger *log.Logger) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (f *Fallback) Load() (*model.Snapshot, error) {
	snap, err := f.primary.Load()
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.logger.Printf("primary snapshot load failed, trying local copy: %v", err)
	}
	return f.secondary.Load()
}

func (f *Fallback) Save(snap *model.Snapshot) error {
	if err := f.primary.Save(snap); err != nil {
		f.logger.Printf("primary snapshot save failed, keeping local copy: %v", err)
		return f.secondary.Save(snap)
	}
	// Keep the local copy fresh so a later fallback load is not stale.
	if err := f.secondary.Save(snap); err != nil {
		f.logger.Printf("local snapshot mirror failed: %v", err)
	}
	return nil
}
