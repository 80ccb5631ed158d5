package http

import (
	"fmt"
	"net/http"
	"time"

	"easychat/auth"
	"easychat/contract"
	"easychat/domain"
	"easychat/errors"

	json "github.com/goccy/go-json"
	"github.com/samber/lo"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type identityResponse struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarRef   string `json:"avatarRef,omitempty"`
}

type authResponse struct {
	Token string           `json:"token"`
	User  identityResponse `json:"user"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	AvatarRef string    `json:"avatarRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type messagesResponse struct {
	Messages []messageResponse `json:"messages"`
	Cursor   *string           `json:"cursor,omitempty"`
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	identity, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, errors.MapToStatusCode(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, authResponse{
		Token: string(token),
		User:  toIdentityResponse(identity),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	identity, token, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, errors.MapToStatusCode(err), err)
		return
	}

	s.writeJSON(w, http.StatusCreated, authResponse{
		Token: string(token),
		User:  toIdentityResponse(identity),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := s.auth.SendPasswordReset(r.Context(), req.Email); err != nil {
		// no account enumeration on the wire: unknown accounts are logged
		// server-side and reported as accepted
		if stderr := errors.MapToStatusCode(err); stderr != http.StatusUnauthorized {
			s.writeError(w, stderr, fmt.Errorf("reset email could not be sent"))
			return
		}
		s.log.Warn("reset requested for unknown account", "email", req.Email)
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	messages, next, err := s.chat.GetMessages(cursor)
	if err != nil {
		s.log.Error("history read failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("could not load messages"))
		return
	}

	s.writeJSON(w, http.StatusOK, messagesResponse{
		Messages: lo.Map(messages, func(m domain.Message, _ int) messageResponse {
			return toMessageResponse(m)
		}),
		Cursor: next,
	})
}

// handlePostMessage creates a message on behalf of the authenticated caller.
// Author and avatar are derived from the token identity at write time, never
// taken from the request body.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if req.Body == "" {
		s.writeError(w, http.StatusBadRequest, errors.ErrEmptyMessage)
		return
	}

	identity := identityFromContext(r)
	created, err := s.chat.PostMessage(r.Context(), contract.NewMessage{
		Author:    identity.Label(),
		Body:      req.Body,
		AvatarRef: identity.Avatar(),
	})
	if err != nil {
		s.log.Error("message create failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("could not store message"))
		return
	}

	s.writeJSON(w, http.StatusCreated, toMessageResponse(created))
}

func identityFromContext(r *http.Request) domain.Identity {
	identity := domain.Identity{}
	if v, ok := r.Context().Value(auth.UserIDKey).(string); ok {
		identity.UserID = v
	}
	if v, ok := r.Context().Value(auth.EmailKey).(string); ok {
		identity.Email = v
	}
	if v, ok := r.Context().Value(auth.DisplayNameKey).(string); ok {
		identity.DisplayName = v
	}
	return identity
}

func toIdentityResponse(identity domain.Identity) identityResponse {
	return identityResponse{
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		AvatarRef:   identity.AvatarRef,
	}
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID.String(),
		Author:    m.Author,
		Body:      m.Body,
		AvatarRef: m.AvatarRef,
		CreatedAt: m.CreatedAt,
	}
}
