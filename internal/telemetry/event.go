package telemetry

import "time"

type EventType string

const (
	EventQuestCreated        EventType = "quest_created"
	EventQuestReset          EventType = "quest_reset"
	EventTaskCompleted       EventType = "task_completed"
	EventLevelUp             EventType = "level_up"
	EventStageCompleted      EventType = "stage_completed"
	EventQuestCompleted      EventType = "quest_completed"
	EventDailyRollover       EventType = "daily_rollover"
	EventThemeUnlocked       EventType = "theme_unlocked"
	EventThemeApplied        EventType = "theme_applied"
	EventAchievementUnlocked EventType = "achievement_unlocked"
)

type Event struct {
	ID        int           `json:"id"`
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  EventMetadata `json:"metadata,omitempty"`
}

type EventMetadata map[string]interface{}

// Recorder is the sink engine operations report progression events to.
type Recorder interface {
	Record(t EventType, meta EventMetadata)
}
