package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Send(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), srv.URL, "TOKEN", time.Second)
	require.NoError(t, c.Send(context.Background(), "-100", "hello"))
	require.Equal(t, "/botTOKEN/sendMessage", path)
	require.Equal(t, "-100", got["chat_id"])
	require.Equal(t, "hello", got["text"])
}

func TestClient_SendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), srv.URL, "TOKEN", time.Second)
	err := c.Send(context.Background(), "1", "x")
	require.ErrorContains(t, err, "chat not found")
}

func TestClient_SendHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), srv.URL, "TOKEN", time.Second)
	err := c.Send(context.Background(), "1", "x")
	require.ErrorContains(t, err, "status 401")
}

func TestClient_GetUpdates(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"chat":{"id":-100},"text":"/stats"}},
			{"update_id":11}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), srv.URL, "TOKEN", time.Second)
	updates, err := c.GetUpdates(context.Background(), 10, 30*time.Second)
	require.NoError(t, err)
	require.Equal(t, "/botTOKEN/getUpdates", path)
	require.Len(t, updates, 2)
	require.Equal(t, int64(-100), updates[0].Message.Chat.ID)
	require.Equal(t, "/stats", updates[0].Message.Text)
	require.Nil(t, updates[1].Message)
	require.EqualValues(t, 10, got["offset"])
	require.EqualValues(t, 30, got["timeout"])
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "при...", truncate("привет", 3))
}
