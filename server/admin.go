package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/huskgames/snakearena/actor"
	"github.com/huskgames/snakearena/snake"
)

// Admin exposes a tiny read-only HTTP surface over the registry actor -
// the process-external equivalent of App.sessions, for operators rather
// than clients of the wire protocol.
type Admin struct {
	engine *actor.Engine
	appPID *actor.PID
}

func NewAdmin(engine *actor.Engine, appPID *actor.PID) *Admin {
	return &Admin{engine: engine, appPID: appPID}
}

// HandleListSessions answers GET /sessions with a JSON snapshot of every
// live session, queried via Ask rather than touching registry state
// directly from the HTTP goroutine.
func (adm *Admin) HandleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reply, err := adm.engine.Ask(adm.appPID, snake.ListSessions{}, 2*time.Second)
		if err != nil {
			if errors.Is(err, actor.ErrAskTimeout) {
				http.Error(w, "timed out querying registry", http.StatusGatewayTimeout)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		result := reply.(snake.ListSessionsResult)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result.Sessions)
	}
}

// HandleHealth is a liveness probe independent of registry state.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
