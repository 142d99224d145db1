// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/uno/internal/session"
	"github.com/jason-s-yu/uno/internal/settings"
	"github.com/sirupsen/logrus"
)

// Server holds what the HTTP and websocket handlers share.
type Server struct {
	Sessions       *session.Store
	Settings       settings.Store
	SessionOptions session.Options
	AllowedOrigins []string
	Logger         logrus.FieldLogger
}

// NewServer builds a Server with an empty session store.
func NewServer(store settings.Store, opts session.Options, origins []string, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Server{
		Sessions:       session.NewStore(),
		Settings:       store,
		SessionOptions: opts,
		AllowedOrigins: origins,
		Logger:         logger,
	}
}

// Routes registers every endpoint on mux.
func (s *Server) Routes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /health", wrap(HealthHandler(s)))
	mux.Handle("GET /settings/{client}", wrap(GetSettingsHandler(s)))
	mux.Handle("PUT /settings/{client}", wrap(PutSettingsHandler(s)))
	// websocket upgrades are not wrapped so the connection can be hijacked
	mux.HandleFunc("GET /session/ws", SessionWSHandler(s))
}

// HealthHandler reports liveness and the number of connected renderers.
func HealthHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": s.Sessions.Len(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
