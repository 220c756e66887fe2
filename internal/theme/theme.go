package theme

import "fmt"

// Metric names a player progression axis a theme unlock can test.
type Metric string

const (
	MetricLevel           Metric = "level"
	MetricStreak          Metric = "streak"
	MetricTotalXP         Metric = "totalXP"
	MetricQuestsCompleted Metric = "questsCompleted"
)

func (m Metric) IsValid() bool {
	switch m {
	case MetricLevel, MetricStreak, MetricTotalXP, MetricQuestsCompleted:
		return true
	default:
		return false
	}
}

// Condition is "metric >= threshold". A nil condition means always unlocked.
type Condition struct {
	Metric    Metric `json:"metric"`
	Threshold int    `json:"threshold"`
}

// PlayerStats is the slice of player state unlock conditions read.
type PlayerStats struct {
	Level           int
	Streak          int
	TotalXP         int
	QuestsCompleted int
}

func (c Condition) Met(s PlayerStats) bool {
	switch c.Metric {
	case MetricLevel:
		return s.Level >= c.Threshold
	case MetricStreak:
		return s.Streak >= c.Threshold
	case MetricTotalXP:
		return s.TotalXP >= c.Threshold
	case MetricQuestsCompleted:
		return s.QuestsCompleted >= c.Threshold
	default:
		return false
	}
}

func (c Condition) Description() string {
	switch c.Metric {
	case MetricLevel:
		return fmt.Sprintf("Reach level %d", c.Threshold)
	case MetricStreak:
		return fmt.Sprintf("Keep a %d-day streak", c.Threshold)
	case MetricTotalXP:
		return fmt.Sprintf("Earn %d total XP", c.Threshold)
	case MetricQuestsCompleted:
		if c.Threshold == 1 {
			return "Complete a quest"
		}
		return fmt.Sprintf("Complete %d quests", c.Threshold)
	default:
		return ""
	}
}

// Theme is a cosmetic color scheme with an optional unlock gate.
type Theme struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Condition   *Condition `json:"condition,omitempty"`
}

// Status is a catalog entry resolved against a player, as served to clients.
type Status struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Unlocked    bool   `json:"unlocked"`
	Active      bool   `json:"active"`
	Condition   string `json:"condition,omitempty"`
}

// Catalog returns the built-in theme table. The default theme carries no
// condition and is unlocked from the start.
func Catalog() []Theme {
	return []Theme{
		{Name: "default", DisplayName: "Classic"},
		{Name: "cafe", DisplayName: "Cozy Cafe", Condition: &Condition{Metric: MetricLevel, Threshold: 2}},
		{Name: "pond", DisplayName: "Quiet Pond", Condition: &Condition{Metric: MetricLevel, Threshold: 3}},
		{Name: "forest", DisplayName: "Deep Forest", Condition: &Condition{Metric: MetricStreak, Threshold: 3}},
		{Name: "sunset", DisplayName: "Sunset Ride", Condition: &Condition{Metric: MetricStreak, Threshold: 7}},
		{Name: "beach", DisplayName: "Beach Day", Condition: &Condition{Metric: MetricTotalXP, Threshold: 1500}},
		{Name: "mountain", DisplayName: "High Mountain", Condition: &Condition{Metric: MetricTotalXP, Threshold: 3000}},
		{Name: "space", DisplayName: "Outer Space", Condition: &Condition{Metric: MetricLevel, Threshold: 10}},
		{Name: "library", DisplayName: "Grand Library", Condition: &Condition{Metric: MetricQuestsCompleted, Threshold: 1}},
	}
}

// NewlyUnlocked returns the names of locked themes whose condition the
// player now satisfies, in catalog order.
func NewlyUnlocked(catalog []Theme, unlocked map[string]bool, s PlayerStats) []string {
	var out []string
	for _, t := range catalog {
		if unlocked[t.Name] {
			continue
		}
		if t.Condition == nil || t.Condition.Met(s) {
			out = append(out, t.Name)
		}
	}
	return out
}
