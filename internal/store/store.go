package store

import (
	"errors"

	"github.com/yiyi75/careerquest/internal/model"
)

// ErrNotFound is returned by Load when no snapshot has been saved yet.
var ErrNotFound = errors.New("snapshot not found")

// Store persists one user's snapshot. Implementations must return deep
// copies: callers mutate what they get back.
type Store interface {
	Load() (*model.Snapshot, error)
	Save(*model.Snapshot) error
}
