package httpx

import (
	"context"
	"net/http"
	"time"
)

// ReadinessChecker reports whether a dependency can serve traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

type healthBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// liveness always answers 200; the process is up if it can serve this.
func liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, r, http.StatusOK, healthBody{Status: "ok"})
}

// readiness answers 503 while the session backend is unreachable.
func readiness(check ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check == nil {
			liveness(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := check.Ready(ctx); err != nil {
			writeHealth(w, r, http.StatusServiceUnavailable, healthBody{Status: "unavailable", Error: "session store unreachable"})
			return
		}
		writeHealth(w, r, http.StatusOK, healthBody{Status: "ok"})
	}
}

func writeHealth(w http.ResponseWriter, r *http.Request, code int, body healthBody) {
	w.Header().Set("Cache-Control", "no-store")
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}
	WriteJSON(w, code, body)
}
