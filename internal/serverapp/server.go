// Package serverapp wires storage, engines and HTTP routing into one
// handler. Engines are created lazily per user and share the process-wide
// telemetry recorder.
package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yiyi75/careerquest/internal/config"
	"github.com/yiyi75/careerquest/internal/engine"
	"github.com/yiyi75/careerquest/internal/httpmw"
	"github.com/yiyi75/careerquest/internal/store"
	"github.com/yiyi75/careerquest/internal/telemetry"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger
	// Now overrides the engine clock; tests use it.
	Now func() time.Time
}

type engineSet struct {
	mu      sync.Mutex
	engines map[string]*engine.Engine
	build   func(userID string) (*engine.Engine, error)
}

func (s *engineSet) forUser(userID string) (*engine.Engine, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = httpmw.DefaultUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[userID]; ok {
		return e, nil
	}
	e, err := s.build(userID)
	if err != nil {
		return nil, err
	}
	s.engines[userID] = e
	return e, nil
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	cfg := opts.Config
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	fileStore, err := store.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	var redisStore *store.RedisStore
	if cfg.Storage.Redis.Enabled {
		client, err := store.Dial(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err != nil {
			// The file store still works; run degraded rather than refuse to boot.
			opts.Logger.Printf("redis unavailable, falling back to file storage only: %v", err)
		} else {
			redisStore = store.NewRedisStore(client)
		}
	}

	storeForUser := func(userID string) store.Store {
		if redisStore != nil {
			return store.NewFallback(redisStore.ForUser(userID), fileStore.ForUser(userID), opts.Logger)
		}
		return fileStore.ForUser(userID)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpmw.RegisterMetrics(registry)
	telemetry.RegisterMetrics(registry)

	events := telemetry.NewMemoryRepo()
	recorder := telemetry.NewPromRecorder(events)

	themes := cfg.ThemeCatalog()
	engines := &engineSet{
		engines: map[string]*engine.Engine{},
		build: func(userID string) (*engine.Engine, error) {
			return engine.New(engine.Options{
				Store:      storeForUser(userID),
				Logger:     opts.Logger,
				Recorder:   recorder,
				Now:        opts.Now,
				Location:   loc,
				XPPerLevel: cfg.Leveling.XPPerLevel,
				BaseTaskXP: cfg.Leveling.BaseTaskXP,
				MinTaskXP:  cfg.Leveling.MinTaskXP,
				Themes:     themes,
			})
		},
	}

	questHandler := engine.NewHandler(nil)
	questHandler.SetEngineResolver(func(r *http.Request) (*engine.Engine, error) {
		return engines.forUser(httpmw.UserIDFromContext(r.Context()))
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/quest", questHandler.QuestRoot)
	mux.HandleFunc("/api/quest/", questHandler.QuestSub)
	mux.HandleFunc("/api/state", questHandler.State)
	mux.HandleFunc("/api/player", questHandler.Player)
	mux.HandleFunc("/api/progress", questHandler.Progress)
	mux.HandleFunc("/api/rollover", questHandler.Rollover)
	mux.HandleFunc("/api/themes", questHandler.Themes)
	mux.HandleFunc("/api/themes/apply", questHandler.ApplyTheme)
	mux.HandleFunc("/api/achievements", questHandler.Achievements)

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		since := time.Now().AddDate(0, 0, -7)
		if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
			parsed, err := time.ParseInLocation("2006-01-02", raw, loc)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "since must be YYYY-MM-DD"})
				return
			}
			since = parsed
		}
		writeJSON(w, http.StatusOK, telemetry.CalculateStats(events.List(since), since))
	})

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "careerquest",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := fileStore.Load(); err != nil && !errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "snapshot storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "careerquest",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithMetrics,
		httpmw.WithRequestID,
		httpmw.WithUserID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
