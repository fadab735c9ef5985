package rest

import (
	"encoding/json"
	"net/http"
)

type statsResponse struct {
	WaitingPlayers int `json:"waiting_players"`
	ActiveSessions int `json:"active_sessions"`
}

func statsHandler(queue queue, sessions sessionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := sessions.Count(r.Context())
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		resp := statsResponse{
			WaitingPlayers: queue.QueueLen(),
			ActiveSessions: count,
		}

		w.Header().Set("Content-Type", "application/json")
		if err = json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
