package model

import "time"

const (
	MetricTasksCompleted      = "tasks_completed"
	MetricDailyTasksCompleted = "daily_tasks_completed"
)

// Player is the per-user progression record. It outlives individual quests
// and is only cleared by explicit user action.
type Player struct {
	Level           int            `json:"level"`
	XP              int            `json:"xp"`
	TotalXP         int            `json:"totalXP"`
	Streak          int            `json:"streak"`
	LastActivity    *time.Time     `json:"lastActivity,omitempty"`
	TotalDays       int            `json:"totalDays"`
	QuestsCompleted int            `json:"questsCompleted"`
	Metrics         map[string]int `json:"metrics,omitempty"`
}

func DefaultPlayer() Player {
	return Player{
		Level:     1,
		TotalDays: 1,
		Metrics: map[string]int{
			MetricTasksCompleted:      0,
			MetricDailyTasksCompleted: 0,
		},
	}
}

func (p *Player) Clone() Player {
	out := *p
	if p.LastActivity != nil {
		t := *p.LastActivity
		out.LastActivity = &t
	}
	out.Metrics = make(map[string]int, len(p.Metrics))
	for k, v := range p.Metrics {
		out.Metrics[k] = v
	}
	return out
}
