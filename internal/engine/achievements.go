package engine

import (
	"github.com/yiyi75/careerquest/internal/model"
	"github.com/yiyi75/careerquest/internal/telemetry"
)

const (
	achFirstSteps     = "first_steps"
	achQuickLearner   = "quick_learner"
	achDedicated      = "dedicated"
	achStageFinisher  = "stage_finisher"
	achCareerChampion = "career_champion"
	achConsistent     = "consistent"
	achDailyWarrior   = "daily_warrior"
)

func achievementCatalog() []model.Achievement {
	return []model.Achievement{
		{ID: achFirstSteps, Title: "First Steps", Description: "Complete your first task", XP: 50},
		{ID: achQuickLearner, Title: "Quick Learner", Description: "Complete 5 tasks in a single day", XP: 100},
		{ID: achDedicated, Title: "Dedicated", Description: "Keep a 7-day streak", XP: 200},
		{ID: achStageFinisher, Title: "Stage Finisher", Description: "Complete a full stage", XP: 150},
		{ID: achCareerChampion, Title: "Career Champion", Description: "Complete a quest", XP: 1000},
		{ID: achConsistent, Title: "Consistent", Description: "Stay on a quest for 30 days", XP: 500},
		{ID: achDailyWarrior, Title: "Daily Warrior", Description: "Complete 20 daily tasks", XP: 300},
	}
}

// mergeAchievements carries saved unlock flags onto the current catalog, so
// catalog additions show up on old saves and removed entries disappear.
func mergeAchievements(saved []model.Achievement) []model.Achievement {
	unlocked := map[string]bool{}
	for _, a := range saved {
		if a.Unlocked {
			unlocked[a.ID] = true
		}
	}
	out := achievementCatalog()
	for i := range out {
		out[i].Unlocked = unlocked[out[i].ID]
	}
	return out
}

func (e *Engine) todayCompletionsLocked() int {
	n := 0
	for _, tasks := range e.daily.TodaysProgress {
		n += len(tasks)
	}
	return n
}

func (e *Engine) achievementMetLocked(id string) bool {
	switch id {
	case achFirstSteps:
		return e.player.Metrics[model.MetricTasksCompleted] >= 1
	case achQuickLearner:
		return e.todayCompletionsLocked() >= 5
	case achDedicated:
		return e.player.Streak >= 7
	case achStageFinisher:
		if e.player.QuestsCompleted > 0 {
			return true
		}
		return e.quest != nil && e.quest.CompletedStageCount() >= 1
	case achCareerChampion:
		return e.player.QuestsCompleted >= 1
	case achConsistent:
		return e.player.TotalDays >= 30
	case achDailyWarrior:
		return e.player.Metrics[model.MetricDailyTasksCompleted] >= 20
	default:
		return false
	}
}

// checkAchievementsLocked unlocks every achievement whose condition now
// holds and awards its bonus XP. Returns the newly unlocked entries.
func (e *Engine) checkAchievementsLocked() []model.Achievement {
	var out []model.Achievement
	for i := range e.achievements {
		a := &e.achievements[i]
		if a.Unlocked || !e.achievementMetLocked(a.ID) {
			continue
		}
		a.Unlocked = true
		e.player.XP += a.XP
		e.player.TotalXP += a.XP
		e.record(telemetry.EventAchievementUnlocked, telemetry.EventMetadata{
			"id": a.ID,
			"xp": a.XP,
		})
		out = append(out, *a)
	}
	return out
}

// Achievements returns a copy of the catalog with unlock state.
func (e *Engine) Achievements() []model.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Achievement{}, e.achievements...)
}
