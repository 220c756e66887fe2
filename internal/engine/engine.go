// Package engine implements the quest progression state machine: XP awards,
// leveling, streaks, daily rollover, stage and quest completion, theme and
// achievement unlocks. All state for one user lives in a model.Snapshot that
// the engine loads once and persists after every mutation.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yiyi75/careerquest/internal/model"
	"github.com/yiyi75/careerquest/internal/store"
	"github.com/yiyi75/careerquest/internal/telemetry"
	"github.com/yiyi75/careerquest/internal/theme"
)

var (
	ErrNoQuest       = errors.New("no active quest")
	ErrStageNotFound = errors.New("stage not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidQuest  = errors.New("invalid quest definition")
	ErrEmptyStage    = errors.New("stage has no tasks")
	ErrThemeUnknown  = errors.New("unknown theme")
	ErrThemeLocked   = errors.New("theme not unlocked")
)

type Options struct {
	Store    store.Store
	Logger   *log.Logger
	Recorder telemetry.Recorder
	// Now is the clock; tests inject a fixed one.
	Now      func() time.Time
	Location *time.Location

	XPPerLevel int
	BaseTaskXP int
	MinTaskXP  int
	Themes     []theme.Theme
}

// Engine is safe for concurrent use. Mutating operations run the lazy daily
// rollover first, then apply, then persist the snapshot.
type Engine struct {
	mu     sync.Mutex
	store  store.Store
	logger *log.Logger
	rec    telemetry.Recorder
	now    func() time.Time
	loc    *time.Location

	xpPerLevel int
	baseTaskXP int
	minTaskXP  int
	themes     []theme.Theme

	player       model.Player
	quest        *model.Quest
	daily        model.DailyReset
	deco         model.Decorations
	achievements []model.Achievement
}

func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.XPPerLevel <= 0 {
		opts.XPPerLevel = 200
	}
	if opts.BaseTaskXP <= 0 {
		opts.BaseTaskXP = 100
	}
	if opts.MinTaskXP <= 0 {
		opts.MinTaskXP = 25
	}
	if len(opts.Themes) == 0 {
		opts.Themes = theme.Catalog()
	}

	e := &Engine{
		store:      opts.Store,
		logger:     opts.Logger,
		rec:        opts.Recorder,
		now:        opts.Now,
		loc:        opts.Location,
		xpPerLevel: opts.XPPerLevel,
		baseTaskXP: opts.BaseTaskXP,
		minTaskXP:  opts.MinTaskXP,
		themes:     opts.Themes,
	}

	snap, err := opts.Store.Load()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		snap = &model.Snapshot{Player: model.DefaultPlayer()}
		snap.Normalize()
	}
	e.applySnapshotLocked(snap)
	return e, nil
}

// Load replaces the engine state with the given snapshot wholesale. Used by
// the import endpoint and by restore tooling.
func (e *Engine) Load(snap *model.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	snap = snap.Clone()
	snap.Normalize()
	e.applySnapshotLocked(snap)
	e.persistLocked()
	return nil
}

func (e *Engine) applySnapshotLocked(snap *model.Snapshot) {
	e.player = snap.Player
	e.quest = snap.Quest
	e.daily = snap.DailyReset
	e.deco = snap.Decorations
	e.achievements = mergeAchievements(snap.Achievements)
	if e.daily.TodaysProgress == nil {
		e.daily.TodaysProgress = map[int][]int{}
	}
}

// Serialize returns a deep copy of the full engine state.
func (e *Engine) Serialize() *model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() *model.Snapshot {
	snap := &model.Snapshot{
		Version:      model.SnapshotVersion,
		Player:       e.player,
		Quest:        e.quest,
		DailyReset:   e.daily,
		Decorations:  e.deco,
		Achievements: e.achievements,
	}
	return snap.Clone()
}

func (e *Engine) persistLocked() {
	if err := e.store.Save(e.snapshotLocked()); err != nil {
		e.logger.Printf("snapshot save failed: %v", err)
	}
}

func (e *Engine) record(t telemetry.EventType, meta telemetry.EventMetadata) {
	if e.rec != nil {
		e.rec.Record(t, meta)
	}
}

func (e *Engine) statsLocked() theme.PlayerStats {
	return theme.PlayerStats{
		Level:           e.player.Level,
		Streak:          e.player.Streak,
		TotalXP:         e.player.TotalXP,
		QuestsCompleted: e.player.QuestsCompleted,
	}
}

// Player returns a copy of the current player record.
func (e *Engine) Player() model.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player.Clone()
}

// Quest returns a copy of the active quest, or nil when none is set.
func (e *Engine) Quest() *model.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quest.Clone()
}

// ResetQuest discards the active quest and its daily bookkeeping. Player
// progression, unlocked themes and achievements survive the reset.
func (e *Engine) ResetQuest() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.quest = nil
	e.daily.TodaysProgress = map[int][]int{}
	e.record(telemetry.EventQuestReset, nil)
	e.persistLocked()
}

// MarshalState renders the snapshot as indented JSON, for export endpoints
// and ops tooling.
func (e *Engine) MarshalState() ([]byte, error) {
	return json.MarshalIndent(e.Serialize(), "", "  ")
}
