package engine

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yiyi75/careerquest/internal/model"
	"github.com/yiyi75/careerquest/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *Engine) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	e, err := New(Options{
		Store:    store.NewMemoryStore(),
		Now:      clock.now,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	h := NewHandler(e)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/quest", h.QuestRoot)
	mux.HandleFunc("/api/quest/", h.QuestSub)
	mux.HandleFunc("/api/state", h.State)
	mux.HandleFunc("/api/player", h.Player)
	mux.HandleFunc("/api/progress", h.Progress)
	mux.HandleFunc("/api/rollover", h.Rollover)
	mux.HandleFunc("/api/themes", h.Themes)
	mux.HandleFunc("/api/themes/apply", h.ApplyTheme)
	mux.HandleFunc("/api/achievements", h.Achievements)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, e
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHTTP_QuestLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/quest", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 before creation, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/quest", map[string]any{
		"title": "Become a Data Engineer",
		"stages": []map[string]any{
			{"title": "Learn", "tasks": []map[string]any{
				{"title": "sql basics"},
				{"title": "daily reading", "isDaily": true},
			}},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: want 201, got %d", resp.StatusCode)
	}
	quest := decodeBody[model.Quest](t, resp)
	if len(quest.Stages) != 1 || len(quest.Stages[0].Steps) != 2 {
		t.Fatalf("unexpected quest shape: %+v", quest)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/quest/stages/1/steps/1/complete", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: want 200, got %d", resp.StatusCode)
	}
	res := decodeBody[CompletionResult](t, resp)
	if res.XPGained == 0 || res.AlreadyCompleted {
		t.Fatalf("unexpected completion result: %+v", res)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/quest/stages/1/steps/2/toggle-daily", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle: want 200, got %d", resp.StatusCode)
	}
	task := decodeBody[model.Task](t, resp)
	if task.IsDaily {
		t.Fatalf("toggle should flip the daily flag off: %+v", task)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/progress", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("progress: want 200, got %d", resp.StatusCode)
	}
	progress := decodeBody[QuestProgress](t, resp)
	if progress.Overall != 50 {
		t.Fatalf("want overall 50, got %v", progress.Overall)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/quest", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/quest", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 after reset, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHTTP_CompleteUnknownTask(t *testing.T) {
	srv, e := newTestServer(t)
	if _, err := e.CreateQuest("Quest", oneStage(TaskSpec{Title: "a"})); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/quest/stages/1/steps/99/complete", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 for unknown task, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/quest/stages/nope/complete", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for bad stage id, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHTTP_ThemeApply(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/themes/apply", map[string]any{"name": "space"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("locked theme: want 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/themes/apply", map[string]any{"name": "nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown theme: want 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/themes/apply", map[string]any{"name": "default"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("default theme: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHTTP_StateExportImport(t *testing.T) {
	srv, e := newTestServer(t)
	if _, err := e.CreateQuest("Quest", oneStage(TaskSpec{Title: "a"}, TaskSpec{Title: "b"})); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := e.CompleteStep(1, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/state", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: want 200, got %d", resp.StatusCode)
	}
	snap := decodeBody[model.Snapshot](t, resp)
	if snap.Quest == nil || !snap.Quest.Stages[0].Steps[0].Completed {
		t.Fatalf("export missing state: %+v", snap)
	}

	e.ResetQuest()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/state", snap)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if q := e.Quest(); q == nil || !q.Stages[0].Steps[0].Completed {
		t.Fatalf("import did not restore the quest")
	}
}
