package engine

import (
	"fmt"
	"strings"

	"github.com/yiyi75/careerquest/internal/model"
)

// AddStage appends a stage to the active quest and prices its tasks.
func (e *Engine) AddStage(title string, tasks []TaskSpec) (*model.Quest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: stage title is required", ErrInvalidQuest)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	if e.quest == nil {
		return nil, ErrNoQuest
	}

	stage := model.Stage{
		Title:    title,
		Unlocked: true,
	}
	for _, ts := range tasks {
		t := strings.TrimSpace(ts.Title)
		if t == "" {
			continue
		}
		stage.Steps = append(stage.Steps, model.Task{Title: t, IsDaily: ts.IsDaily})
	}
	stage.ReindexSteps()
	e.quest.Stages = append(e.quest.Stages, stage)
	e.quest.ReindexStages()
	e.repriceStageLocked(&e.quest.Stages[len(e.quest.Stages)-1])

	e.persistLocked()
	return e.quest.Clone(), nil
}

// RemoveStage deletes a stage. Later stage ids shift down, so today's
// progress bookkeeping is rebuilt from nothing. Other stages keep their
// task prices.
func (e *Engine) RemoveStage(stageID int) (*model.Quest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	if e.quest == nil {
		return nil, ErrNoQuest
	}

	idx := -1
	for i := range e.quest.Stages {
		if e.quest.Stages[i].ID == stageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrStageNotFound
	}

	e.quest.Stages = append(e.quest.Stages[:idx], e.quest.Stages[idx+1:]...)
	e.quest.ReindexStages()
	e.daily.TodaysProgress = map[int][]int{}
	e.completeQuestIfDoneLocked()

	e.persistLocked()
	return e.quest.Clone(), nil
}

func (e *Engine) RenameStage(stageID int, title string) (*model.Quest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: stage title is required", ErrInvalidQuest)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	stage, err := e.findStageLocked(stageID)
	if err != nil {
		return nil, err
	}
	stage.Title = title
	e.persistLocked()
	return e.quest.Clone(), nil
}

// AddTask appends a task to a stage. Adding to a completed stage does not
// reopen it; completion is one-way.
func (e *Engine) AddTask(stageID int, title string, isDaily bool) (*model.Quest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidQuest)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	stage, err := e.findStageLocked(stageID)
	if err != nil {
		return nil, err
	}

	stage.Steps = append(stage.Steps, model.Task{Title: title, IsDaily: isDaily})
	stage.ReindexSteps()
	e.repriceStageLocked(stage)

	e.persistLocked()
	return e.quest.Clone(), nil
}

// RemoveTask deletes a task. If the stage's remaining tasks are all done,
// the stage completes; removing the last task leaves the stage open.
func (e *Engine) RemoveTask(stageID, taskID int) (*model.Quest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	stage, err := e.findStageLocked(stageID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range stage.Steps {
		if stage.Steps[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrTaskNotFound
	}

	stage.Steps = append(stage.Steps[:idx], stage.Steps[idx+1:]...)
	stage.ReindexSteps()
	e.repriceStageLocked(stage)
	delete(e.daily.TodaysProgress, stage.ID)

	if !stage.Completed && stage.AllTasksCompleted() {
		e.completeStageLocked(stage)
	}
	e.completeQuestIfDoneLocked()

	e.persistLocked()
	return e.quest.Clone(), nil
}

func (e *Engine) RenameTask(stageID, taskID int, title string) (*model.Quest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidQuest)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	_, task, err := e.findTaskLocked(stageID, taskID)
	if err != nil {
		return nil, err
	}
	task.Title = title
	e.persistLocked()
	return e.quest.Clone(), nil
}

// QuestEdit is the bulk-edit payload: the desired final shape of the quest.
type QuestEdit struct {
	Title  string      `json:"title"`
	Stages []StageSpec `json:"stages"`
}

// EditQuest rewrites the quest to the given shape while preserving earned
// completion state. Stages and tasks are matched to their old counterparts
// by title first, then by position, so renames do not lose progress.
func (e *Engine) EditQuest(edit QuestEdit) (*model.Quest, error) {
	title := strings.TrimSpace(edit.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: quest title is required", ErrInvalidQuest)
	}
	if len(edit.Stages) == 0 {
		return nil, fmt.Errorf("%w: at least one stage is required", ErrInvalidQuest)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	if e.quest == nil {
		return nil, ErrNoQuest
	}

	old := e.quest
	next := &model.Quest{
		Title:      title,
		StartedAt:  old.StartedAt,
		Completed:  old.Completed,
		CurrentDay: old.CurrentDay,
	}

	usedStages := make([]bool, len(old.Stages))
	for pos, spec := range edit.Stages {
		stageTitle := strings.TrimSpace(spec.Title)
		if stageTitle == "" {
			return nil, fmt.Errorf("%w: stage title is required", ErrInvalidQuest)
		}

		prev := matchStage(old.Stages, usedStages, stageTitle, pos)
		stage := model.Stage{
			Title:    stageTitle,
			Unlocked: true,
		}

		var prevSteps []model.Task
		if prev != nil {
			stage.Completed = prev.Completed
			prevSteps = prev.Steps
		}

		usedTasks := make([]bool, len(prevSteps))
		for tpos, ts := range spec.Tasks {
			taskTitle := strings.TrimSpace(ts.Title)
			if taskTitle == "" {
				continue
			}
			task := model.Task{Title: taskTitle, IsDaily: ts.IsDaily}
			if pt := matchTask(prevSteps, usedTasks, taskTitle, tpos); pt != nil {
				task.Completed = pt.Completed
				if task.IsDaily {
					task.CompletedToday = pt.IsDaily && pt.CompletedToday
				} else {
					task.CompletedToday = task.Completed
				}
			}
			stage.Steps = append(stage.Steps, task)
		}
		stage.ReindexSteps()

		// Completion stays monotonic, and can newly trigger if the
		// edit removed the only open tasks.
		if !stage.Completed && stage.AllTasksCompleted() {
			stage.Completed = true
		}
		next.Stages = append(next.Stages, stage)
	}
	next.ReindexStages()

	e.quest = next
	e.recomputeTaskXPLocked()
	e.daily.TodaysProgress = map[int][]int{}
	e.completeQuestIfDoneLocked()

	e.persistLocked()
	return e.quest.Clone(), nil
}

func matchStage(stages []model.Stage, used []bool, title string, pos int) *model.Stage {
	for i := range stages {
		if !used[i] && stages[i].Title == title {
			used[i] = true
			return &stages[i]
		}
	}
	if pos < len(stages) && !used[pos] {
		used[pos] = true
		return &stages[pos]
	}
	return nil
}

func matchTask(tasks []model.Task, used []bool, title string, pos int) *model.Task {
	for i := range tasks {
		if !used[i] && tasks[i].Title == title {
			used[i] = true
			return &tasks[i]
		}
	}
	if pos < len(tasks) && !used[pos] {
		used[pos] = true
		return &tasks[pos]
	}
	return nil
}
