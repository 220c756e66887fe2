package engine

import (
	"github.com/yiyi75/careerquest/internal/model"
	"github.com/yiyi75/careerquest/internal/telemetry"
)

// CompletionResult reports everything a single completion changed, so
// clients can celebrate level-ups and unlocks without refetching state.
type CompletionResult struct {
	AlreadyCompleted     bool                `json:"alreadyCompleted,omitempty"`
	XPGained             int                 `json:"xpGained"`
	BonusXP              int                 `json:"bonusXP,omitempty"`
	LeveledUp            bool                `json:"leveledUp"`
	NewLevel             int                 `json:"newLevel"`
	Streak               int                 `json:"streak"`
	IsDailyTask          bool                `json:"isDailyTask"`
	StageCompleted       bool                `json:"stageCompleted"`
	QuestCompleted       bool                `json:"questCompleted"`
	UnlockedThemes       []string            `json:"unlockedThemes,omitempty"`
	UnlockedAchievements []model.Achievement `json:"unlockedAchievements,omitempty"`
}

func (e *Engine) findStageLocked(stageID int) (*model.Stage, error) {
	if e.quest == nil {
		return nil, ErrNoQuest
	}
	for i := range e.quest.Stages {
		if e.quest.Stages[i].ID == stageID {
			return &e.quest.Stages[i], nil
		}
	}
	return nil, ErrStageNotFound
}

func (e *Engine) findTaskLocked(stageID, taskID int) (*model.Stage, *model.Task, error) {
	stage, err := e.findStageLocked(stageID)
	if err != nil {
		return nil, nil, err
	}
	for i := range stage.Steps {
		if stage.Steps[i].ID == taskID {
			return stage, &stage.Steps[i], nil
		}
	}
	return nil, nil, ErrTaskNotFound
}

// CompleteStep completes one task. Completing an already-done task (or a
// daily task already done today) is a no-op that reports AlreadyCompleted.
func (e *Engine) CompleteStep(stageID, taskID int) (*CompletionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	stage, task, err := e.findTaskLocked(stageID, taskID)
	if err != nil {
		return nil, err
	}

	res := &CompletionResult{
		IsDailyTask: task.IsDaily,
		NewLevel:    e.player.Level,
		Streak:      e.player.Streak,
	}

	done := task.Completed
	if task.IsDaily {
		done = task.CompletedToday
	}
	if done {
		res.AlreadyCompleted = true
		return res, nil
	}

	prevLevel := e.player.Level
	now := e.now()

	e.completeTaskLocked(stage, task)
	e.applyStreakLocked(now)
	res.XPGained = task.XP

	if !stage.Completed && stage.AllTasksCompleted() {
		e.completeStageLocked(stage)
		res.StageCompleted = true
	}
	res.QuestCompleted = e.completeQuestIfDoneLocked()

	res.UnlockedAchievements = e.checkAchievementsLocked()
	for _, a := range res.UnlockedAchievements {
		res.BonusXP += a.XP
	}

	e.player.Level = e.levelForXP(e.player.XP)
	if e.player.Level > prevLevel {
		res.LeveledUp = true
		e.record(telemetry.EventLevelUp, telemetry.EventMetadata{
			"from": prevLevel,
			"to":   e.player.Level,
		})
	}
	res.NewLevel = e.player.Level
	res.Streak = e.player.Streak
	res.UnlockedThemes = e.checkThemesLocked()

	e.persistLocked()
	return res, nil
}

// completeTaskLocked awards XP and flips the task flags. Streak, level and
// unlock checks are the caller's business.
func (e *Engine) completeTaskLocked(stage *model.Stage, task *model.Task) {
	e.player.XP += task.XP
	e.player.TotalXP += task.XP
	task.Completed = true
	task.CompletedToday = true
	e.daily.TodaysProgress[stage.ID] = append(e.daily.TodaysProgress[stage.ID], task.ID)

	e.player.Metrics[model.MetricTasksCompleted]++
	if task.IsDaily {
		e.player.Metrics[model.MetricDailyTasksCompleted]++
	}

	e.record(telemetry.EventTaskCompleted, telemetry.EventMetadata{
		"stage": stage.ID,
		"task":  task.ID,
		"daily": task.IsDaily,
		"xp":    task.XP,
	})
}

func (e *Engine) completeStageLocked(stage *model.Stage) {
	stage.Completed = true
	// Check the box on every one-off task so the finished stage renders
	// fully ticked.
	for i := range stage.Steps {
		if !stage.Steps[i].IsDaily {
			stage.Steps[i].CompletedToday = true
		}
	}
	e.record(telemetry.EventStageCompleted, telemetry.EventMetadata{
		"stage": stage.ID,
		"title": stage.Title,
	})
}

// completeQuestIfDoneLocked finishes the quest once every stage is done.
// Completion is one-way.
func (e *Engine) completeQuestIfDoneLocked() bool {
	if e.quest == nil || e.quest.Completed || !e.quest.AllStagesCompleted() {
		return false
	}
	e.quest.Completed = true
	e.player.QuestsCompleted++
	e.record(telemetry.EventQuestCompleted, telemetry.EventMetadata{
		"title": e.quest.Title,
		"days":  e.quest.CurrentDay,
	})
	return true
}

// CompleteStage is the manual override: it forces the stage complete and
// checks off its one-off tasks without awarding any XP. Daily tasks are left
// alone.
func (e *Engine) CompleteStage(stageID int) (*CompletionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	stage, err := e.findStageLocked(stageID)
	if err != nil {
		return nil, err
	}

	if len(stage.Steps) == 0 {
		return nil, ErrEmptyStage
	}

	res := &CompletionResult{
		NewLevel: e.player.Level,
		Streak:   e.player.Streak,
	}
	if stage.Completed {
		res.AlreadyCompleted = true
		return res, nil
	}

	for i := range stage.Steps {
		if !stage.Steps[i].IsDaily {
			stage.Steps[i].Completed = true
		}
	}
	e.completeStageLocked(stage)
	res.StageCompleted = true
	res.QuestCompleted = e.completeQuestIfDoneLocked()
	res.UnlockedThemes = e.checkThemesLocked()

	e.persistLocked()
	return res, nil
}

// ToggleDailyTask flips a task between daily and one-off. Lifetime
// completion is preserved either way: a newly daily task must be re-done
// today, a newly one-off task shows its lifetime state.
func (e *Engine) ToggleDailyTask(stageID, taskID int) (*model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	_, task, err := e.findTaskLocked(stageID, taskID)
	if err != nil {
		return nil, err
	}

	task.IsDaily = !task.IsDaily
	if task.IsDaily {
		task.CompletedToday = false
	} else {
		task.CompletedToday = task.Completed
	}
	e.persistLocked()

	out := *task
	return &out, nil
}
