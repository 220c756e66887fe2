package model

import "time"

// Task is a single checklist item inside a stage. Completed is the lifetime
// flag that feeds stage completion and never reverts; CompletedToday is the
// display flag that daily rollover clears for daily tasks.
type Task struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	IsDaily        bool   `json:"isDaily"`
	Completed      bool   `json:"completed"`
	CompletedToday bool   `json:"completedToday"`
	XP             int    `json:"xp"`
}

// Stage is a named phase of a quest with an ordered task list.
type Stage struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Unlocked  bool   `json:"unlocked"`
	Steps     []Task `json:"steps"`
}

// Quest is the unit of persistence alongside the player: created wholesale,
// replacing any prior quest.
type Quest struct {
	Title      string    `json:"title"`
	StartedAt  time.Time `json:"startedAt"`
	Completed  bool      `json:"completed"`
	CurrentDay int       `json:"currentDay"`
	Stages     []Stage   `json:"stages"`
}

// AllTasksCompleted reports whether every task in the stage has been
// completed at least once. Empty stages never count as complete.
func (s *Stage) AllTasksCompleted() bool {
	if len(s.Steps) == 0 {
		return false
	}
	for i := range s.Steps {
		if !s.Steps[i].Completed {
			return false
		}
	}
	return true
}

func (s *Stage) CompletedTaskCount() int {
	n := 0
	for i := range s.Steps {
		if s.Steps[i].Completed {
			n++
		}
	}
	return n
}

func (q *Quest) AllStagesCompleted() bool {
	if len(q.Stages) == 0 {
		return false
	}
	for i := range q.Stages {
		if !q.Stages[i].Completed {
			return false
		}
	}
	return true
}

func (q *Quest) CompletedStageCount() int {
	n := 0
	for i := range q.Stages {
		if q.Stages[i].Completed {
			n++
		}
	}
	return n
}

// TotalCompletedTasks counts lifetime-completed tasks across all stages.
func (q *Quest) TotalCompletedTasks() int {
	n := 0
	for i := range q.Stages {
		n += q.Stages[i].CompletedTaskCount()
	}
	return n
}

// ReindexStages restores contiguous 1-based stage ids after a structural
// edit.
func (q *Quest) ReindexStages() {
	for i := range q.Stages {
		q.Stages[i].ID = i + 1
	}
}

// ReindexSteps restores contiguous 1-based task ids within the stage.
func (s *Stage) ReindexSteps() {
	for i := range s.Steps {
		s.Steps[i].ID = i + 1
	}
}

func (q *Quest) Clone() *Quest {
	if q == nil {
		return nil
	}
	out := *q
	out.Stages = make([]Stage, len(q.Stages))
	for i, st := range q.Stages {
		cs := st
		cs.Steps = append([]Task{}, st.Steps...)
		out.Stages[i] = cs
	}
	return &out
}
