package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/infra/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

// replyError carries a user-facing reply the widget can show as-is.
type replyError struct {
	Error string `json:"error"`
	Reply string `json:"reply"`
}

type initRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type saveRequest struct {
	UserID string `json:"userId"`
}

type userInfo struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	SessionStart time.Time `json:"sessionStart"`
}

type sessionItem struct {
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	SessionStart time.Time `json:"sessionStart"`
	MessageCount int       `json:"messageCount"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody is permissive: a missing or malformed body leaves v zeroed so
// validation reports the domain error instead of a parse error.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		logging.With(r.Context(), s.log).Debug().Err(err).Msg("ignoring unreadable body")
	}
}

func (s *Server) handleInitSession(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	s.decodeBody(w, r, &req)

	res, err := s.chat.InitSession(r.Context(), req.Name, req.Email)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("init session failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: s.phrases.T("init_failed")})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":   res.Session.ID,
		"message":  s.phrases.T("session_initialized"),
		"greeting": res.Greeting,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	s.decodeBody(w, r, &req)

	// A client disconnect must not abort a turn that is already in flight.
	ctx := context.WithoutCancel(r.Context())
	res, err := s.chat.SubmitTurn(ctx, req.UserID, req.Message)
	switch {
	case errors.Is(err, domain.ErrInvalidSession):
		writeJSON(w, http.StatusBadRequest, replyError{
			Error: s.phrases.T("invalid_session_error"),
			Reply: s.phrases.T("invalid_session_reply"),
		})
		return
	case errors.Is(err, domain.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, replyError{
			Error: s.phrases.T("empty_message_error"),
			Reply: s.phrases.T("empty_message_reply"),
		})
		return
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, replyError{
			Error: s.phrases.T("rate_limited_error"),
			Reply: s.phrases.T("rate_limited_reply"),
		})
		return
	case err != nil:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("chat turn failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	if !res.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"reply":   res.Reply,
			"error":   true,
			"success": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reply":        res.Reply,
		"messageCount": res.MessageCount,
		"success":      true,
	})
}

func (s *Server) handleSaveConversation(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	s.decodeBody(w, r, &req)

	res, err := s.chat.SaveConversation(r.Context(), req.UserID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: s.phrases.T("session_not_found")})
		return
	case errors.Is(err, domain.ErrNothingToSave):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: s.phrases.T("nothing_to_save")})
		return
	case err != nil:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("manual save failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: s.phrases.T("save_failed")})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  s.phrases.T("saved_messages", res.MessageCount),
		"filename": res.Filename,
	})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")
	view, err := s.chat.Conversation(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: s.phrases.T("user_not_found")})
		return
	}
	msgs := view.Messages
	if msgs == nil {
		msgs = []model.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": view.Session.ID,
		"userInfo": userInfo{
			Name:         view.Session.Name,
			Email:        view.Session.Email,
			SessionStart: view.Session.StartedAt,
		},
		"messageCount": len(msgs),
		"messages":     msgs,
	})
}

func (s *Server) handleDownloadAll(w http.ResponseWriter, r *http.Request) {
	rc, err := s.chat.OpenExport(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: s.phrases.T("no_conversations")})
		return
	}
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("open export failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "all_conversations.csv"))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("export stream interrupted")
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.chat.ListSessions(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("list sessions failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	items := make([]sessionItem, 0, len(list))
	for _, e := range list {
		items = append(items, sessionItem{
			UserID:       e.Session.ID,
			Name:         e.Session.Name,
			Email:        e.Session.Email,
			SessionStart: e.Session.StartedAt,
			MessageCount: e.MessageCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalSessions": len(items),
		"sessions":      items,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.chat.Health(r.Context())
	msg := s.phrases.T("health_ready")
	if !h.APIKeyConfigured {
		msg = s.phrases.T("health_missing_key")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "OK",
		"activeSessions":   h.ActiveSessions,
		"totalMessages":    h.TotalMessages,
		"apiKeyConfigured": h.APIKeyConfigured,
		"message":          msg,
	})
}
