package model

import "sort"

// SnapshotVersion is the current persistence schema version. Older or
// unversioned snapshots are upgraded in Normalize rather than scattering
// default checks through the engine.
const SnapshotVersion = 1

const DefaultTheme = "default"

// DailyReset tracks the lazy once-per-day rollover. TodaysProgress records,
// per stage index, which task indices were completed today; it is advisory
// display state and is rebuilt from scratch after each rollover.
type DailyReset struct {
	LastResetDate  string        `json:"lastResetDate"`
	TodaysProgress map[int][]int `json:"todaysProgress,omitempty"`
}

// Decorations is the cosmetic unlock state. Sets serialize as sorted arrays.
type Decorations struct {
	UnlockedThemes      []string `json:"unlockedThemes"`
	CurrentTheme        string   `json:"currentTheme"`
	UnlockedDecorations []string `json:"unlockedDecorations"`
}

// Achievement is a one-way unlock with a bonus XP reward.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
	XP          int    `json:"xp"`
}

// Snapshot is the full persisted state for one user.
type Snapshot struct {
	Version      int           `json:"version"`
	Player       Player        `json:"player"`
	Quest        *Quest        `json:"quest,omitempty"`
	DailyReset   DailyReset    `json:"dailyReset"`
	Decorations  Decorations   `json:"decorations"`
	Achievements []Achievement `json:"achievements,omitempty"`
}

func DefaultDecorations() Decorations {
	return Decorations{
		UnlockedThemes:      []string{DefaultTheme},
		CurrentTheme:        DefaultTheme,
		UnlockedDecorations: []string{},
	}
}

// Normalize upgrades a loaded snapshot to the current schema, filling
// defaults for fields that older save formats did not carry.
func (s *Snapshot) Normalize() {
	if s.Version <= 0 {
		s.Version = SnapshotVersion
	}

	if s.Player.Level < 1 {
		s.Player.Level = 1
	}
	if s.Player.TotalDays < 1 {
		s.Player.TotalDays = 1
	}
	if s.Player.XP < 0 {
		s.Player.XP = 0
	}
	if s.Player.TotalXP < s.Player.XP {
		// Older saves predate the lifetime counter.
		s.Player.TotalXP = s.Player.XP
	}
	if s.Player.Streak < 0 {
		s.Player.Streak = 0
	}
	if s.Player.Metrics == nil {
		s.Player.Metrics = DefaultPlayer().Metrics
	}

	if s.Quest != nil {
		if s.Quest.CurrentDay < 1 {
			s.Quest.CurrentDay = 1
		}
		s.Quest.ReindexStages()
		for i := range s.Quest.Stages {
			s.Quest.Stages[i].Unlocked = true
			s.Quest.Stages[i].ReindexSteps()
		}
	}

	if s.DailyReset.TodaysProgress == nil {
		s.DailyReset.TodaysProgress = map[int][]int{}
	}

	s.Decorations.UnlockedThemes = normalizeSet(s.Decorations.UnlockedThemes, DefaultTheme)
	if s.Decorations.UnlockedDecorations == nil {
		s.Decorations.UnlockedDecorations = []string{}
	} else {
		s.Decorations.UnlockedDecorations = normalizeSet(s.Decorations.UnlockedDecorations)
	}
	if !containsString(s.Decorations.UnlockedThemes, s.Decorations.CurrentTheme) {
		s.Decorations.CurrentTheme = DefaultTheme
	}
}

func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Player = s.Player.Clone()
	out.Quest = s.Quest.Clone()

	out.DailyReset.TodaysProgress = make(map[int][]int, len(s.DailyReset.TodaysProgress))
	for k, v := range s.DailyReset.TodaysProgress {
		out.DailyReset.TodaysProgress[k] = append([]int{}, v...)
	}

	out.Decorations.UnlockedThemes = append([]string{}, s.Decorations.UnlockedThemes...)
	out.Decorations.UnlockedDecorations = append([]string{}, s.Decorations.UnlockedDecorations...)
	out.Achievements = append([]Achievement{}, s.Achievements...)
	return &out
}

// normalizeSet dedupes, sorts and guarantees the given members are present.
func normalizeSet(in []string, ensure ...string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in)+len(ensure))
	for _, v := range append(append([]string{}, in...), ensure...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func containsString(in []string, v string) bool {
	for _, s := range in {
		if s == v {
			return true
		}
	}
	return false
}
