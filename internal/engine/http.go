package engine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/yiyi75/careerquest/internal/model"
)

// Handler exposes the engine over JSON endpoints. The resolver picks the
// engine for the requesting user; without one the fixed engine is used.
type Handler struct {
	engine   *Engine
	resolver func(*http.Request) (*Engine, error)
}

func NewHandler(e *Engine) *Handler {
	return &Handler{engine: e}
}

func (h *Handler) SetEngineResolver(fn func(*http.Request) (*Engine, error)) {
	h.resolver = fn
}

func (h *Handler) engineForRequest(r *http.Request) (*Engine, error) {
	if h.resolver != nil {
		return h.resolver(r)
	}
	return h.engine, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeEngineErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoQuest),
		errors.Is(err, ErrStageNotFound),
		errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrThemeUnknown):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidQuest), errors.Is(err, ErrEmptyStage):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrThemeLocked):
		writeErr(w, http.StatusForbidden, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

// QuestRoot handles /api/quest: GET state, POST create, DELETE reset.
func (h *Handler) QuestRoot(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		quest := e.Quest()
		if quest == nil {
			writeErr(w, http.StatusNotFound, ErrNoQuest.Error())
			return
		}
		writeJSON(w, http.StatusOK, quest)
	case http.MethodPost:
		var req struct {
			Title  string      `json:"title"`
			Stages []StageSpec `json:"stages"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		quest, err := e.CreateQuest(req.Title, req.Stages)
		if err != nil {
			writeEngineErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, quest)
	case http.MethodDelete:
		e.ResetQuest()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// QuestSub routes /api/quest/... subpaths: bulk edit, stage and task
// structure, completion and daily toggling.
func (h *Handler) QuestSub(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/quest/"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case rest == "edit" && r.Method == http.MethodPost:
		var req QuestEdit
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		quest, err := e.EditQuest(req)
		if err != nil {
			writeEngineErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quest)

	case rest == "stages" && r.Method == http.MethodPost:
		var req struct {
			Title string     `json:"title"`
			Tasks []TaskSpec `json:"tasks"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		quest, err := e.AddStage(req.Title, req.Tasks)
		if err != nil {
			writeEngineErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, quest)

	case len(parts) >= 2 && parts[0] == "stages":
		h.stageSub(w, r, e, parts[1:])

	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) stageSub(w http.ResponseWriter, r *http.Request, e *Engine, parts []string) {
	stageID, err := strconv.Atoi(parts[0])
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid stage id")
		return
	}
	rest := parts[1:]

	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodDelete:
			quest, err := e.RemoveStage(stageID)
			h.respondQuest(w, quest, err)
		case http.MethodPatch:
			var req struct {
				Title string `json:"title"`
			}
			if err := decodeJSON(r, &req); err != nil {
				writeErr(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			quest, err := e.RenameStage(stageID, req.Title)
			h.respondQuest(w, quest, err)
		default:
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case len(rest) == 1 && rest[0] == "complete" && r.Method == http.MethodPost:
		res, err := e.CompleteStage(stageID)
		if err != nil {
			writeEngineErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case len(rest) == 1 && rest[0] == "steps" && r.Method == http.MethodPost:
		var req TaskSpec
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		quest, err := e.AddTask(stageID, req.Title, req.IsDaily)
		if err != nil {
			writeEngineErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, quest)

	case len(rest) >= 2 && rest[0] == "steps":
		taskID, err := strconv.Atoi(rest[1])
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid task id")
			return
		}
		h.taskSub(w, r, e, stageID, taskID, rest[2:])

	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) taskSub(w http.ResponseWriter, r *http.Request, e *Engine, stageID, taskID int, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodDelete:
			quest, err := e.RemoveTask(stageID, taskID)
			h.respondQuest(w, quest, err)
		case http.MethodPatch:
			var req struct {
				Title string `json:"title"`
			}
			if err := decodeJSON(r, &req); err != nil {
				writeErr(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			quest, err := e.RenameTask(stageID, taskID, req.Title)
			h.respondQuest(w, quest, err)
		default:
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case len(rest) == 1 && rest[0] == "complete" && r.Method == http.MethodPost:
		res, err := e.CompleteStep(stageID, taskID)
		if err != nil {
			writeEngineErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case len(rest) == 1 && rest[0] == "toggle-daily" && r.Method == http.MethodPost:
		task, err := e.ToggleDailyTask(stageID, taskID)
		if err != nil {
			writeEngineErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)

	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) respondQuest(w http.ResponseWriter, quest *model.Quest, err error) {
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quest)
}

// State handles /api/state: GET exports the full snapshot, PUT imports one.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, e.Serialize())
	case http.MethodPut:
		var snap model.Snapshot
		if err := decodeJSON(r, &snap); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := e.Load(&snap); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Progress handles GET /api/progress.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	progress, err := e.Progress()
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Player handles GET /api/player.
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e.Player())
}

// Rollover handles POST /api/rollover: force the daily reset check.
func (h *Handler) Rollover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rolled": e.CheckDailyReset()})
}

// Themes handles GET /api/themes.
func (h *Handler) Themes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e.Themes())
}

// ApplyTheme handles POST /api/themes/apply.
func (h *Handler) ApplyTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := e.ApplyTheme(strings.TrimSpace(req.Name)); err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Themes())
}

// Achievements handles GET /api/achievements.
func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	e, err := h.engineForRequest(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e.Achievements())
}
