package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yiyi75/careerquest/internal/model"
)

// VerifyReport summarizes a snapshot file scan.
type VerifyReport struct {
	Path         string `json:"path"`
	Users        int    `json:"users"`
	ActiveQuests int    `json:"activeQuests"`
	NeedsUpgrade int    `json:"needsUpgrade"`
}

// VerifySnapshots parses the snapshot file under dataDir and checks every
// user's state decodes and normalizes cleanly. Used before restores and in
// drills to prove an archive is actually usable.
func VerifySnapshots(dataDir string) (*VerifyReport, error) {
	path := filepath.Join(filepath.Clean(dataDir), "snapshots.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var state struct {
		Users map[string]*model.Snapshot `json:"users"`
	}
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	report := &VerifyReport{Path: path, Users: len(state.Users)}
	for uid, snap := range state.Users {
		if snap == nil {
			return nil, fmt.Errorf("user %q: empty snapshot", uid)
		}
		if snap.Version < model.SnapshotVersion {
			report.NeedsUpgrade++
		}
		snap.Normalize()
		if snap.Quest != nil {
			report.ActiveQuests++
			for _, stage := range snap.Quest.Stages {
				for _, task := range stage.Steps {
					if task.XP < 0 {
						return nil, fmt.Errorf("user %q: task %d/%d has negative XP", uid, stage.ID, task.ID)
					}
				}
			}
		}
	}
	return report, nil
}
