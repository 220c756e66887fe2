package engine

import (
	"math"

	"github.com/yiyi75/careerquest/internal/model"
)

// taskXP is the per-task award for a stage with taskCount tasks. Bigger
// stages pay less per task so total stage XP grows sublinearly.
func (e *Engine) taskXP(taskCount int) int {
	if taskCount <= 0 {
		return e.baseTaskXP
	}
	xp := int(math.Floor(float64(e.baseTaskXP) / math.Sqrt(float64(taskCount))))
	if xp < e.minTaskXP {
		xp = e.minTaskXP
	}
	return xp
}

// levelForXP maps cumulative XP to a level. Level 1 starts at zero.
func (e *Engine) levelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/e.xpPerLevel + 1
}

// repriceStageLocked recomputes the per-task XP from the stage's own task
// count. Called whenever that count changes.
func (e *Engine) repriceStageLocked(stage *model.Stage) {
	xp := e.taskXP(len(stage.Steps))
	for i := range stage.Steps {
		stage.Steps[i].XP = xp
	}
}

// recomputeTaskXPLocked reprices every stage after an edit that rebuilt the
// whole quest.
func (e *Engine) recomputeTaskXPLocked() {
	if e.quest == nil {
		return
	}
	for i := range e.quest.Stages {
		e.repriceStageLocked(&e.quest.Stages[i])
	}
}
