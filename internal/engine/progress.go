package engine

// StageProgress is one stage's completion summary.
type StageProgress struct {
	StageID        int     `json:"stageId"`
	Title          string  `json:"title"`
	Completed      bool    `json:"completed"`
	CompletedTasks int     `json:"completedTasks"`
	TotalTasks     int     `json:"totalTasks"`
	Percent        float64 `json:"percent"`
}

// QuestProgress is the overall view: the uniform average of per-stage
// percentages, regardless of stage size.
type QuestProgress struct {
	QuestTitle      string          `json:"questTitle"`
	Overall         float64         `json:"overall"`
	Stages          []StageProgress `json:"stages"`
	CompletedStages int             `json:"completedStages"`
	TotalStages     int             `json:"totalStages"`
	CurrentDay      int             `json:"currentDay"`
	TotalDays       int             `json:"totalDays"`
	QuestCompleted  bool            `json:"questCompleted"`
}

// Progress computes the current progress view. Reads run the lazy rollover
// too, so the first request of a new day sees fresh daily state.
func (e *Engine) Progress() (*QuestProgress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rolloverLocked() {
		e.persistLocked()
	}
	if e.quest == nil {
		return nil, ErrNoQuest
	}

	out := &QuestProgress{
		QuestTitle:      e.quest.Title,
		CompletedStages: e.quest.CompletedStageCount(),
		TotalStages:     len(e.quest.Stages),
		CurrentDay:      e.quest.CurrentDay,
		TotalDays:       e.player.TotalDays,
		QuestCompleted:  e.quest.Completed,
	}

	sum := 0.0
	for i := range e.quest.Stages {
		st := &e.quest.Stages[i]
		sp := StageProgress{
			StageID:        st.ID,
			Title:          st.Title,
			Completed:      st.Completed,
			CompletedTasks: st.CompletedTaskCount(),
			TotalTasks:     len(st.Steps),
		}
		switch {
		case st.Completed:
			sp.Percent = 100
		case len(st.Steps) > 0:
			sp.Percent = float64(sp.CompletedTasks) / float64(sp.TotalTasks) * 100
		}
		sum += sp.Percent
		out.Stages = append(out.Stages, sp)
	}
	if len(out.Stages) > 0 {
		out.Overall = sum / float64(len(out.Stages))
	}
	if out.Overall > 100 {
		out.Overall = 100
	}
	return out, nil
}
