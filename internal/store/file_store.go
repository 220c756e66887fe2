package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yiyi75/careerquest/internal/model"
)

type fileState struct {
	Users map[string]*model.Snapshot `json:"users"`
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileStore is the local-device snapshot store: one JSON file for all users.
// It is user-scoped; call ForUser(userID) to get a scoped view.
type FileStore struct {
	store  *fileStore
	userID string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "snapshots.json"),
		s:    fileState{Users: map[string]*model.Snapshot{}},
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileStore{
		store:  st,
		userID: "default",
	}, nil
}

func (s *fileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = fileState{Users: map[string]*model.Snapshot{}}
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]*model.Snapshot{}
	}
	for uid, snap := range loaded.Users {
		if snap == nil {
			delete(loaded.Users, uid)
			continue
		}
		snap.Normalize()
	}
	s.s = loaded
	return nil
}

func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileStore) ForUser(userID string) *FileStore {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "default"
	}
	return &FileStore{
		store:  r.store,
		userID: userID,
	}
}

func (r *FileStore) Load() (*model.Snapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	snap, ok := r.store.s.Users[r.userID]
	if !ok || snap == nil {
		return nil, ErrNotFound
	}
	out := snap.Clone()
	out.Normalize()
	return out, nil
}

func (r *FileStore) Save(snap *model.Snapshot) error {
	if snap == nil {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.s.Users[r.userID] = snap.Clone()
	return r.store.saveLocked()
}
