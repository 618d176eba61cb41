package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bloops-games/wordmix/internal/database/result/database"
	"github.com/bloops-games/wordmix/internal/database/result/model"
	"github.com/bloops-games/wordmix/internal/lobby"
	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// StatsStore answers per-player aggregates. database.ErrNotFound means the
// player has no recorded match.
type StatsStore interface {
	FetchStats(player string) (model.PlayerStats, error)
}

type handler struct {
	config   *Config
	manager  *lobby.Manager
	stats    StatsStore
	upgrader websocket.Upgrader
}

// NewRouter mounts the HTTP endpoints. ctx bounds every websocket connection.
func NewRouter(ctx context.Context, config *Config, manager *lobby.Manager, stats StatsStore) chi.Router {
	h := &handler{
		config:  config,
		manager: manager,
		stats:   stats,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/health", HandleHealth(ctx))
	r.Get("/rooms", h.handleRooms)
	r.Get("/players/{name}/stats", h.handleStats(ctx))
	r.Get("/ws", h.handleWS(ctx))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	return r
}

func HandleHealth(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (h *handler) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Rooms())
}

func (h *handler) handleStats(ctx context.Context) http.HandlerFunc {
	logger := logging.FromContext(ctx).Named("server.handleStats")

	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if h.stats == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "stats disabled"})
			return
		}

		stats, err := h.stats.FetchStats(name)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no results for " + name})
				return
			}
			logger.Errorf("fetch stats of %s: %v", name, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
