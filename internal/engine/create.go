package engine

import (
	"strings"

	"github.com/yiyi75/careerquest/internal/model"
	"github.com/yiyi75/careerquest/internal/telemetry"
)

type TaskSpec struct {
	Title   string `json:"title"`
	IsDaily bool   `json:"isDaily"`
}

type StageSpec struct {
	Title string     `json:"title"`
	Tasks []TaskSpec `json:"tasks"`
}

// CreateQuest replaces any active quest with a freshly built one. Player
// progression carries over; daily bookkeeping restarts at day one. Degenerate
// shapes (no stages, stages without tasks) are accepted; an empty stage just
// never completes.
func (e *Engine) CreateQuest(title string, stages []StageSpec) (*model.Quest, error) {
	title = strings.TrimSpace(title)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	quest := &model.Quest{
		Title:      title,
		StartedAt:  now,
		CurrentDay: 1,
	}

	totalTasks := 0
	for _, spec := range stages {
		stage := model.Stage{
			Title:    strings.TrimSpace(spec.Title),
			Unlocked: true,
		}
		for _, ts := range spec.Tasks {
			taskTitle := strings.TrimSpace(ts.Title)
			if taskTitle == "" {
				continue
			}
			stage.Steps = append(stage.Steps, model.Task{
				Title:   taskTitle,
				IsDaily: ts.IsDaily,
			})
			totalTasks++
		}
		stage.ReindexSteps()
		quest.Stages = append(quest.Stages, stage)
	}
	quest.ReindexStages()

	for i := range quest.Stages {
		e.repriceStageLocked(&quest.Stages[i])
	}

	e.quest = quest
	e.player.TotalDays = 1
	e.daily = model.DailyReset{
		LastResetDate:  dateKey(now, e.loc),
		TodaysProgress: map[int][]int{},
	}

	e.record(telemetry.EventQuestCreated, telemetry.EventMetadata{
		"title":  title,
		"stages": len(quest.Stages),
		"tasks":  totalTasks,
	})
	e.persistLocked()
	return quest.Clone(), nil
}
