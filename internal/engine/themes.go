package engine

import (
	"fmt"
	"sort"

	"github.com/yiyi75/careerquest/internal/model"
	"github.com/yiyi75/careerquest/internal/telemetry"
	"github.com/yiyi75/careerquest/internal/theme"
)

func (e *Engine) unlockedThemeSetLocked() map[string]bool {
	set := make(map[string]bool, len(e.deco.UnlockedThemes))
	for _, name := range e.deco.UnlockedThemes {
		set[name] = true
	}
	return set
}

// checkThemesLocked unlocks every theme whose condition the player now
// meets. Unlocks are permanent even if the underlying stat later drops.
func (e *Engine) checkThemesLocked() []string {
	names := theme.NewlyUnlocked(e.themes, e.unlockedThemeSetLocked(), e.statsLocked())
	if len(names) == 0 {
		return nil
	}
	for _, name := range names {
		e.deco.UnlockedThemes = append(e.deco.UnlockedThemes, name)
		e.record(telemetry.EventThemeUnlocked, telemetry.EventMetadata{"theme": name})
	}
	sort.Strings(e.deco.UnlockedThemes)
	return names
}

// Themes lists the catalog resolved against the player's unlocks.
func (e *Engine) Themes() []theme.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := e.unlockedThemeSetLocked()
	out := make([]theme.Status, 0, len(e.themes))
	for _, t := range e.themes {
		st := theme.Status{
			Name:        t.Name,
			DisplayName: t.DisplayName,
			Unlocked:    set[t.Name] || t.Condition == nil,
			Active:      t.Name == e.deco.CurrentTheme,
		}
		if t.Condition != nil {
			st.Condition = t.Condition.Description()
		}
		out = append(out, st)
	}
	return out
}

// ApplyTheme switches the active theme. The theme must exist in the
// catalog and be unlocked.
func (e *Engine) ApplyTheme(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var found *theme.Theme
	for i := range e.themes {
		if e.themes[i].Name == name {
			found = &e.themes[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("%w: %s", ErrThemeUnknown, name)
	}
	if !e.unlockedThemeSetLocked()[name] && found.Condition != nil {
		return fmt.Errorf("%w: %s", ErrThemeLocked, name)
	}

	if !e.unlockedThemeSetLocked()[name] {
		e.deco.UnlockedThemes = append(e.deco.UnlockedThemes, name)
		sort.Strings(e.deco.UnlockedThemes)
	}
	e.deco.CurrentTheme = name
	e.record(telemetry.EventThemeApplied, telemetry.EventMetadata{"theme": name})
	e.persistLocked()
	return nil
}

// Decorations returns a copy of the cosmetic unlock state.
func (e *Engine) Decorations() model.Decorations {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.deco
	out.UnlockedThemes = append([]string{}, e.deco.UnlockedThemes...)
	out.UnlockedDecorations = append([]string{}, e.deco.UnlockedDecorations...)
	return out
}
