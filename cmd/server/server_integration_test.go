package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yiyi75/careerquest/internal/config"
	"github.com/yiyi75/careerquest/internal/serverapp"
)

type testApp struct {
	handler http.Handler
	clock   *time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.Timezone = "UTC"
	cfg.Storage.DataDir = t.TempDir()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	app := &testApp{clock: &now}

	h, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: log.New(io.Discard, "", 0),
		Now:    func() time.Time { return *app.clock },
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	app.handler = h
	return app
}

func (a *testApp) advanceDays(n int) {
	*a.clock = a.clock.AddDate(0, 0, n)
}

func (a *testApp) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body failed: %v body=%s", err, rec.Body.String())
	}
}

func TestServer_FullProgressionFlow(t *testing.T) {
	app := newTestApp(t)

	res := app.request(t, http.MethodPost, "/api/quest", map[string]any{
		"title": "Become a Site Reliability Engineer",
		"stages": []map[string]any{
			{"title": "Fundamentals", "tasks": []map[string]any{
				{"title": "read the incident playbook"},
				{"title": "daily log review", "isDaily": true},
			}},
			{"title": "On-call", "tasks": []map[string]any{
				{"title": "shadow a rotation"},
			}},
		},
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create quest expected 201, got %d body=%s", res.Code, res.Body.String())
	}

	// Day 1: one-off plus the daily task.
	res = app.request(t, http.MethodPost, "/api/quest/stages/1/steps/1/complete", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("complete expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	res = app.request(t, http.MethodPost, "/api/quest/stages/1/steps/2/complete", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("complete daily expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	var completion struct {
		StageCompleted bool `json:"stageCompleted"`
		Streak         int  `json:"streak"`
	}
	decode(t, res, &completion)
	if !completion.StageCompleted {
		t.Fatalf("stage one should be complete, body=%s", res.Body.String())
	}
	if completion.Streak != 1 {
		t.Fatalf("want streak 1 on day one, got %d", completion.Streak)
	}

	// Day 2: rollover reopens the daily task and extends the streak.
	app.advanceDays(1)
	res = app.request(t, http.MethodPost, "/api/rollover", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("rollover expected 200, got %d", res.Code)
	}
	var rolled struct {
		Rolled bool `json:"rolled"`
	}
	decode(t, res, &rolled)
	if !rolled.Rolled {
		t.Fatalf("expected a rollover on day two")
	}

	res = app.request(t, http.MethodPost, "/api/quest/stages/1/steps/2/complete", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("daily re-complete expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	decode(t, res, &completion)
	if completion.Streak != 2 {
		t.Fatalf("want streak 2 on day two, got %d", completion.Streak)
	}

	// Finish the quest.
	res = app.request(t, http.MethodPost, "/api/quest/stages/2/steps/1/complete", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("final complete expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	var final struct {
		QuestCompleted bool     `json:"questCompleted"`
		UnlockedThemes []string `json:"unlockedThemes"`
	}
	decode(t, res, &final)
	if !final.QuestCompleted {
		t.Fatalf("quest should be complete, body=%s", res.Body.String())
	}

	res = app.request(t, http.MethodGet, "/api/progress", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("progress expected 200, got %d", res.Code)
	}
	var progress struct {
		Overall    float64 `json:"overall"`
		CurrentDay int     `json:"currentDay"`
	}
	decode(t, res, &progress)
	if progress.Overall != 100 {
		t.Fatalf("want overall 100, got %v", progress.Overall)
	}
	if progress.CurrentDay != 2 {
		t.Fatalf("want day 2, got %d", progress.CurrentDay)
	}

	res = app.request(t, http.MethodGet, "/api/stats", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("stats expected 200, got %d", res.Code)
	}
	var stats struct {
		TaskCompletions  int `json:"task_completions"`
		QuestCompletions int `json:"quest_completions"`
		Rollovers        int `json:"rollovers"`
	}
	decode(t, res, &stats)
	if stats.TaskCompletions != 4 || stats.QuestCompletions != 1 || stats.Rollovers != 1 {
		t.Fatalf("unexpected stats: %+v body=%s", stats, res.Body.String())
	}
}
