package telemetry

import "time"

type Stats struct {
	Period           string            `json:"period"`
	EventCounts      map[EventType]int `json:"event_counts"`
	TaskCompletions  int               `json:"task_completions"`
	LevelUps         int               `json:"level_ups"`
	StageCompletions int               `json:"stage_completions"`
	QuestCompletions int               `json:"quest_completions"`
	Rollovers        int               `json:"rollovers"`
	ThemeUnlocks     int               `json:"theme_unlocks"`
	XPAwarded        int               `json:"xp_awarded"`
	TasksPerDay      float64           `json:"tasks_per_day"`
}

// CalculateStats aggregates progression events since the given time. Daily
// rollovers delimit days, so tasks_per_day only means something once at
// least one rollover happened in the window.
func CalculateStats(events []Event, since time.Time) Stats {
	stats := Stats{
		Period:      since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		switch event.Type {
		case EventTaskCompleted:
			stats.TaskCompletions++
			if xp, ok := metaInt(event.Metadata, "xp"); ok {
				stats.XPAwarded += xp
			}
		case EventLevelUp:
			stats.LevelUps++
		case EventStageCompleted:
			stats.StageCompletions++
		case EventQuestCompleted:
			stats.QuestCompletions++
		case EventDailyRollover:
			stats.Rollovers++
		case EventThemeUnlocked:
			stats.ThemeUnlocks++
		}
	}

	if stats.Rollovers > 0 {
		stats.TasksPerDay = float64(stats.TaskCompletions) / float64(stats.Rollovers)
	}

	return stats
}

// metaInt reads a numeric metadata value. Events that round-tripped through
// JSON carry numbers as float64.
func metaInt(meta EventMetadata, key string) (int, bool) {
	switch v := meta[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
