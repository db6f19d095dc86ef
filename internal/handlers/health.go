package handlers

import "net/http"

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":    "workshop-backend",
		"status": "ok",
	})
}
