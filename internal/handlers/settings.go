// internal/handlers/settings.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

const maxClientIDLen = 128

func clientID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("client"))
	return id, id != "" && len(id) <= maxClientIDLen
}

// GetSettingsHandler returns the saved table options for a client, or the defaults.
func GetSettingsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := clientID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid client id")
			return
		}
		gs, err := s.Settings.Load(r.Context(), id)
		if err != nil {
			s.Logger.WithError(err).WithField("client", id).Error("Failed to load settings")
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		writeJSON(w, http.StatusOK, gs)
	}
}

// PutSettingsHandler saves table options. Out of range counts are clamped, not rejected.
func PutSettingsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := clientID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid client id")
			return
		}

		var req models.GameSettings
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		saved, err := s.Settings.Save(r.Context(), id, req)
		if err != nil {
			s.Logger.WithError(err).WithField("client", id).Error("Failed to save settings")
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		s.Logger.WithFields(logrus.Fields{
			"client":  id,
			"players": saved.PlayerCount,
			"cards":   saved.InitialCardCount,
		}).Debug("Settings saved")
		writeJSON(w, http.StatusOK, saved)
	}
}
