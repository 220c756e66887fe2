package engine

import (
	"time"

	"github.com/yiyi75/careerquest/internal/telemetry"
)

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// dayOrdinal counts whole civil days in the given zone, so DST transitions
// do not skew date arithmetic.
func dayOrdinal(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func daysBetween(a, b time.Time, loc *time.Location) int {
	return int(dayOrdinal(b, loc) - dayOrdinal(a, loc))
}

// CheckDailyReset runs the rollover if the civil date advanced since the
// last one. Mutating operations call this implicitly; the endpoint exists
// for clients that want to refresh without mutating anything.
func (e *Engine) CheckDailyReset() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rolloverLocked() {
		return false
	}
	e.persistLocked()
	return true
}

// rolloverLocked advances the engine into the current civil day. Returns
// true when a rollover actually happened.
func (e *Engine) rolloverLocked() bool {
	now := e.now()
	today := dateKey(now, e.loc)
	if e.daily.LastResetDate == today {
		return false
	}
	first := e.daily.LastResetDate == ""
	previous := e.daily.LastResetDate
	e.daily.LastResetDate = today
	e.daily.TodaysProgress = map[int][]int{}
	if first {
		return false
	}

	if e.quest != nil {
		e.quest.CurrentDay++
		for i := range e.quest.Stages {
			for j := range e.quest.Stages[i].Steps {
				if e.quest.Stages[i].Steps[j].IsDaily {
					e.quest.Stages[i].Steps[j].CompletedToday = false
				}
			}
		}
		days := daysBetween(e.quest.StartedAt, now, e.loc) + 1
		if days < 1 {
			days = 1
		}
		e.player.TotalDays = days
	}

	// A full idle calendar day breaks the streak.
	if e.player.LastActivity != nil && daysBetween(*e.player.LastActivity, now, e.loc) > 1 {
		e.player.Streak = 0
	}

	// Time-based achievements can trigger without a completion.
	if newly := e.checkAchievementsLocked(); len(newly) > 0 {
		e.player.Level = e.levelForXP(e.player.XP)
	}

	e.record(telemetry.EventDailyRollover, telemetry.EventMetadata{
		"from": previous,
		"to":   today,
	})
	return true
}

// applyStreakLocked updates the streak for a completion happening now.
// Consecutive-day activity extends it; a gap restarts at one; repeat
// activity on the same day leaves it alone.
func (e *Engine) applyStreakLocked(now time.Time) {
	switch {
	case e.player.LastActivity == nil:
		e.player.Streak = 1
	case daysBetween(*e.player.LastActivity, now, e.loc) == 0:
		// same day, streak unchanged
	case daysBetween(*e.player.LastActivity, now, e.loc) == 1:
		e.player.Streak++
	default:
		e.player.Streak = 1
	}
	t := now
	e.player.LastActivity = &t
}
