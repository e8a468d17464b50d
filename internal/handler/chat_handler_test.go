package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/application"
	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/identity"
	"github.com/smartdaycare/chat-service/internal/repository/memory"
	"github.com/smartdaycare/chat-service/internal/tx"
)

var (
	testParent = domain.Participant{ID: "parent-1", Role: domain.RoleParent, Name: "Dana"}
	testStaff  = domain.Participant{ID: "staff-1", Role: domain.RoleStaff, Name: "Miss Riley"}
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := application.New(memory.New(), tx.Nop{}, identity.NewStatic(testParent, testStaff), zap.NewNop())
	srv := httptest.NewServer(NewRouter(NewChatHandler(svc, zap.NewNop()), nil))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createConversation(t *testing.T, srv *httptest.Server) domain.Conversation {
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chats", map[string]any{
		"participant1": testParent,
		"participant2": testStaff,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[domain.Conversation](t, resp)
}

func TestChatAPI_FullFlow(t *testing.T) {
	srv := newTestServer(t)

	conv := createConversation(t, srv)
	require.NotEmpty(t, conv.ID)
	require.Zero(t, conv.UnreadCount)

	// Creating again for the same pair returns the same conversation.
	again := createConversation(t, srv)
	require.Equal(t, conv.ID, again.ID)

	// Staff sends a message.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chats/messages", map[string]any{
		"conversationId": conv.ID,
		"senderId":       testStaff.ID,
		"senderRole":     testStaff.Role,
		"content":        "Hello",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	msg := decode[domain.Message](t, resp)
	require.Equal(t, "Hello", msg.Content)
	require.False(t, msg.Read)

	// Parent's conversation list shows the preview and unread count.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/chats/user/"+testParent.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convs := decode[[]domain.Conversation](t, resp)
	require.Len(t, convs, 1)
	require.Equal(t, "Hello", convs[0].LastMessagePreview)
	require.Equal(t, 1, convs[0].UnreadCount)

	// Stats agree.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/chats/user/"+testParent.ID+"/stats", nil)
	stats := decode[domain.Stats](t, resp)
	require.Equal(t, 1, stats.TotalConversations)
	require.Equal(t, 1, stats.UnreadMessages)

	// Parent marks the conversation read.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/chats/"+conv.ID+"/read", map[string]any{
		"userId": testParent.ID,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/chats/%s/messages?limit=10&offset=0", srv.URL, conv.ID), nil)
	msgs := decode[[]domain.Message](t, resp)
	require.Len(t, msgs, 1)
	require.True(t, msgs[0].Read)
	require.Len(t, msgs[0].ReadBy, 1)
	require.Equal(t, testParent.ID, msgs[0].ReadBy[0].UserID)

	// Delete cascades; listing the deleted conversation is empty, not 404.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/chats/"+conv.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/chats/"+conv.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, decode[[]domain.Message](t, resp))
}

func TestChatAPI_Participants(t *testing.T) {
	srv := newTestServer(t)
	conv := createConversation(t, srv)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/chats/"+conv.ID+"/participants", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	participants := decode[[]domain.Participant](t, resp)
	require.Len(t, participants, 2)
}

func TestChatAPI_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	conv := createConversation(t, srv)

	cases := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{
			"malformed id on messages",
			http.MethodGet, "/api/chats/not-a-uuid/messages", nil,
			http.StatusBadRequest,
		},
		{
			"mark read on unknown conversation",
			http.MethodPut, "/api/chats/6b1b4095-08a1-4e27-bd09-aa3c3b63535a/read",
			map[string]any{"userId": testParent.ID},
			http.StatusNotFound,
		},
		{
			"empty message content",
			http.MethodPost, "/api/chats/messages",
			map[string]any{"conversationId": conv.ID, "senderId": testStaff.ID, "senderRole": "staff", "content": "   "},
			http.StatusBadRequest,
		},
		{
			"append to malformed conversation id",
			http.MethodPost, "/api/chats/messages",
			map[string]any{"conversationId": "zzz", "senderId": testStaff.ID, "senderRole": "staff", "content": "hi"},
			http.StatusBadRequest,
		},
		{
			"create with unknown participant",
			http.MethodPost, "/api/chats",
			map[string]any{"participant1": map[string]string{"id": "ghost"}, "participant2": testStaff},
			http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, tc.method, srv.URL+tc.path, tc.body)
			defer resp.Body.Close()
			require.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}
