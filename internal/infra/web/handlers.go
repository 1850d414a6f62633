package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/infra/logging"
)

type sendMessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type sendMessageResponse struct {
	Reply       string           `json:"reply"`
	SessionID   string           `json:"session_id"`
	CrisisLevel model.Severity   `json:"crisis_level"`
	MoodScore   *float64         `json:"mood_score,omitempty"`
	EmotionTags []string         `json:"emotion_tags,omitempty"`
	Resources   []model.Resource `json:"resources,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.chat.SendMessage(r.Context(), userID, req.SessionID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sendMessageResponse{
		Reply:       res.ReplyText,
		SessionID:   res.SessionID,
		CrisisLevel: res.CrisisLevel,
		MoodScore:   res.MoodScore,
		EmotionTags: res.EmotionTags,
		Resources:   res.Resources,
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())
	sessionID := chi.URLParam(r, "sessionID")
	ctx := logging.WithSessID(r.Context(), sessionID)

	res, err := s.chat.EndSession(ctx, userID, sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"summary": res.Summary,
		"topics":  res.Topics,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := s.chat.History(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	type turnView struct {
		Author    string `json:"author"`
		Text      string `json:"text"`
		Timestamp string `json:"timestamp"`
	}
	type sessionView struct {
		SessionID string     `json:"session_id"`
		State     string     `json:"state"`
		MoodScore *float64   `json:"mood_score,omitempty"`
		Summary   string     `json:"summary,omitempty"`
		Topics    []string   `json:"topics,omitempty"`
		Turns     []turnView `json:"turns"`
	}
	out := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		sv := sessionView{
			SessionID: sess.ID,
			State:     string(sess.State),
			MoodScore: sess.MoodScore,
			Summary:   sess.Summary,
			Topics:    sess.Topics,
			Turns:     make([]turnView, 0, len(sess.Turns)),
		}
		for _, t := range sess.Turns {
			sv.Turns = append(sv.Turns, turnView{
				Author:    string(t.Author),
				Text:      t.Text,
				Timestamp: t.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		out = append(out, sv)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())

	snap, err := s.dashboard.Snapshot(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"summary": map[string]any{
			"recent_context": snap.Summary.RecentContext,
			"topic_patterns": snap.Summary.TopicPatterns,
			"progress":       snap.Summary.Progress,
			"last_updated":   snap.Summary.LastUpdated,
		},
		"recent_sessions": snap.RecentSessions,
		"mood_history":    snap.MoodHistory,
		"analytics":       snap.Analytics,
	})
}

func (s *Server) handleCrisisResources(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		country = "US"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"country":   country,
		"resources": s.crisis.Resources(country),
	})
}

func (s *Server) handleCrisisEvents(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	events, err := s.crisis.ListEvents(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())
	eventID := chi.URLParam(r, "eventID")
	reviewer := RoleFrom(r.Context()) == RoleReviewer
	if err := s.crisis.Resolve(r.Context(), eventID, userID, reviewer); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCrisisQueue(w http.ResponseWriter, r *http.Request) {
	if RoleFrom(r.Context()) != RoleReviewer {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	events, err := s.crisis.Queue(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

type crisisReportRequest struct {
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCrisisReport(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())

	var req crisisReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ev, msg, resources, err := s.crisis.Report(r.Context(), userID, model.Severity(req.Severity), req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"event_id":  ev.ID,
		"message":   msg,
		"resources": resources,
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())
	if err := s.users.DeleteAccount(r.Context(), userID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidState):
		http.Error(w, "session is not active", http.StatusConflict)
	case errors.Is(err, domain.ErrRateLimited):
		http.Error(w, "too many messages", http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrLockUnavailable):
		http.Error(w, "busy, retry shortly", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrUpstreamFailed):
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	default:
		s.log.Error().Err(err).Msg("internal error")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
