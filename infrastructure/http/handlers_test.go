package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"easychat/auth"
	"easychat/contract"
	"easychat/domain"
	"easychat/errors"
	"easychat/mocks"
	"easychat/services"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T) (*Server, *mocks.MockIAuthService, *mocks.MockIChatService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	authService := mocks.NewMockIAuthService(ctrl)
	chatService := mocks.NewMockIChatService(ctrl)
	return NewServer(logs.GetLoggerFromLevel(slog.LevelDebug), authService, chatService), authService, chatService
}

func doRequest(t *testing.T, server *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin(t *testing.T) {
	t.Run("should return the token and identity", func(t *testing.T) {
		req := require.New(t)
		server, authService, _ := newTestServer(t)

		authService.EXPECT().
			Login(gomock.Any(), "alice@example.com", "Sup3r$ecret").
			Return(domain.Identity{UserID: "user-1", Email: "alice@example.com", DisplayName: "Alice"},
				services.Token("jwt-token"), nil)

		rec := doRequest(t, server, http.MethodPost, "/api/auth/login", "",
			`{"email":"alice@example.com","password":"Sup3r$ecret"}`)
		req.Equal(http.StatusOK, rec.Code)

		var resp authResponse
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		req.Equal("jwt-token", resp.Token)
		req.Equal("user-1", resp.User.UserID)
		req.Equal("Alice", resp.User.DisplayName)
	})

	t.Run("should map failure kinds to status codes", func(t *testing.T) {
		cases := []struct {
			failure error
			status  int
		}{
			{errors.ErrMalformedEmail, http.StatusBadRequest},
			{errors.ErrInvalidCredentials, http.StatusUnauthorized},
			{errors.ErrUnknownAccount, http.StatusUnauthorized},
			{errors.ErrRateLimited, http.StatusTooManyRequests},
			{errors.ErrUnreachable, http.StatusServiceUnavailable},
		}
		for _, tc := range cases {
			req := require.New(t)
			server, authService, _ := newTestServer(t)
			authService.EXPECT().
				Login(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(domain.Identity{}, services.Token(""), tc.failure)

			rec := doRequest(t, server, http.MethodPost, "/api/auth/login", "",
				`{"email":"alice@example.com","password":"x"}`)
			req.Equal(tc.status, rec.Code, "failure %v", tc.failure)
		}
	})

	t.Run("should refuse a malformed body", func(t *testing.T) {
		req := require.New(t)
		server, _, _ := newTestServer(t)
		rec := doRequest(t, server, http.MethodPost, "/api/auth/login", "", `{not json`)
		req.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRegister(t *testing.T) {
	t.Run("should create the account", func(t *testing.T) {
		req := require.New(t)
		server, authService, _ := newTestServer(t)

		authService.EXPECT().
			Register(gomock.Any(), "alice@example.com", "Sup3r$ecret").
			Return(domain.Identity{UserID: "user-1", Email: "alice@example.com"},
				services.Token("jwt-token"), nil)

		rec := doRequest(t, server, http.MethodPost, "/api/auth/register", "",
			`{"email":"alice@example.com","password":"Sup3r$ecret"}`)
		req.Equal(http.StatusCreated, rec.Code)
	})

	t.Run("should report a taken email as a conflict", func(t *testing.T) {
		req := require.New(t)
		server, authService, _ := newTestServer(t)

		authService.EXPECT().
			Register(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.Identity{}, services.Token(""), errors.ErrUserAlreadyExists)

		rec := doRequest(t, server, http.MethodPost, "/api/auth/register", "",
			`{"email":"alice@example.com","password":"Sup3r$ecret"}`)
		req.Equal(http.StatusConflict, rec.Code)
	})
}

func TestHandleReset(t *testing.T) {
	t.Run("should not leak account existence", func(t *testing.T) {
		req := require.New(t)
		server, authService, _ := newTestServer(t)

		authService.EXPECT().
			SendPasswordReset(gomock.Any(), "ghost@example.com").
			Return(errors.ErrUnknownAccount)

		rec := doRequest(t, server, http.MethodPost, "/api/auth/reset", "",
			`{"email":"ghost@example.com"}`)
		req.Equal(http.StatusAccepted, rec.Code)
	})

	t.Run("should surface a transport failure", func(t *testing.T) {
		req := require.New(t)
		server, authService, _ := newTestServer(t)

		authService.EXPECT().
			SendPasswordReset(gomock.Any(), "alice@example.com").
			Return(errors.ErrUnreachable)

		rec := doRequest(t, server, http.MethodPost, "/api/auth/reset", "",
			`{"email":"alice@example.com"}`)
		req.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleGetMessages(t *testing.T) {
	req := require.New(t)
	server, _, chatService := newTestServer(t)

	next := "msg:0000000001000000000:abc"
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	chatService.EXPECT().
		GetMessages(gomock.Nil()).
		Return([]domain.Message{
			{ID: uuid.New(), Author: "Alice", Body: "hello", CreatedAt: created},
		}, &next, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/messages", "", "")
	req.Equal(http.StatusOK, rec.Code)

	var resp messagesResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Len(resp.Messages, 1)
	req.Equal("Alice", resp.Messages[0].Author)
	req.NotNil(resp.Cursor)
	req.Equal(next, *resp.Cursor)

	// The cursor query parameter is forwarded for the next page.
	chatService.EXPECT().
		GetMessages(gomock.Cond(func(c *string) bool { return c != nil && *c == next })).
		Return(nil, nil, nil)
	rec = doRequest(t, server, http.MethodGet, "/api/messages?cursor="+next, "", "")
	req.Equal(http.StatusOK, rec.Code)
}

func TestHandlePostMessage(t *testing.T) {
	t.Run("should require a bearer token", func(t *testing.T) {
		req := require.New(t)
		server, _, _ := newTestServer(t)
		rec := doRequest(t, server, http.MethodPost, "/api/messages", "", `{"body":"hi"}`)
		req.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("should derive author and avatar from the token identity", func(t *testing.T) {
		req := require.New(t)
		server, _, chatService := newTestServer(t)

		token, err := auth.GenerateToken("user-1", "alice@example.com", "Alice", time.Hour)
		req.NoError(err)

		chatService.EXPECT().
			PostMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg contract.NewMessage) (domain.Message, error) {
				req.Equal("Alice", msg.Author)
				req.Equal("hi", msg.Body)
				req.Equal(domain.AvatarPlaceholder, msg.AvatarRef)
				return domain.Message{ID: uuid.New(), Author: msg.Author, Body: msg.Body, CreatedAt: time.Now().UTC()}, nil
			})

		rec := doRequest(t, server, http.MethodPost, "/api/messages", token, `{"body":"hi"}`)
		req.Equal(http.StatusCreated, rec.Code)
	})

	t.Run("should refuse an empty body", func(t *testing.T) {
		req := require.New(t)
		server, _, _ := newTestServer(t)

		token, err := auth.GenerateToken("user-1", "alice@example.com", "Alice", time.Hour)
		req.NoError(err)

		rec := doRequest(t, server, http.MethodPost, "/api/messages", token, `{"body":""}`)
		req.Equal(http.StatusBadRequest, rec.Code)
	})

	t.Run("should refuse an expired token", func(t *testing.T) {
		req := require.New(t)
		server, _, _ := newTestServer(t)

		token, err := auth.GenerateToken("user-1", "alice@example.com", "Alice", -time.Hour)
		req.NoError(err)

		rec := doRequest(t, server, http.MethodPost, "/api/messages", token, `{"body":"hi"}`)
		req.Equal(http.StatusUnauthorized, rec.Code)
	})
}
