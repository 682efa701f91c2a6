package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codeincraft/MathAi/config"
	"github.com/codeincraft/MathAi/internal/assistant"
	"github.com/codeincraft/MathAi/internal/router"
	"github.com/codeincraft/MathAi/internal/session"
	"github.com/codeincraft/MathAi/pkg/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.config.RequireModelKey(); err != nil {
		s.writeError(w, err.Error()+". "+config.ConfigurationPrompt, http.StatusServiceUnavailable)
		return
	}

	sess, created := s.store.GetOrCreate(req.SessionID)
	res, err := s.asker.Ask(r.Context(), sess, req.Question)
	if err != nil {
		if created {
			s.store.Delete(sess.ID)
		}
		s.writeAskError(w, err)
		return
	}
	if created {
		s.metrics.SetActiveSessions(s.store.Len())
	}

	s.writeJSON(w, models.AskResponse{
		SessionID: sess.ID,
		Answer:    res.Answer,
		Steps:     toModelSteps(res.Steps),
	})
}

func (s *Server) writeAskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		s.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, config.ErrConfigurationMissing):
		s.writeError(w, err.Error()+". "+config.ConfigurationPrompt, http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, err.Error(), http.StatusGatewayTimeout)
	default:
		s.logger.Error().Err(err).Msg("ask failed")
		s.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list := s.store.List()
	out := make([]models.SessionSummary, 0, len(list))
	for _, sess := range list {
		out = append(out, models.SessionSummary{
			SessionID: sess.ID,
			Turns:     sess.Transcript.Turns(),
			UpdatedAt: sess.UpdatedAt(),
		})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Get(chi.URLParam(r, "id"))
	if sess == nil {
		s.writeError(w, "session not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, sessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "id"))
	s.metrics.SetActiveSessions(s.store.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, models.HealthResponse{
		Status:     "ok",
		Provider:   string(s.config.Provider()),
		Model:      s.config.Model(),
		Strategy:   s.strategy,
		Configured: s.config.RequireModelKey() == nil,
	})
}

func sessionResponse(sess *session.Session) models.SessionResponse {
	return models.SessionResponse{
		SessionID: sess.ID,
		Messages:  sess.Transcript.Entries(),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt(),
	}
}

func toModelSteps(steps []router.Step) []models.Step {
	if len(steps) == 0 {
		return nil
	}
	out := make([]models.Step, 0, len(steps))
	for _, st := range steps {
		out = append(out, models.Step{
			Capability: st.Capability,
			Input:      st.Input,
			Output:     st.Output,
			Thought:    st.Thought,
		})
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse{Error: message}); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode error")
	}
}
