package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSendDisablesLinkPreviews(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	sender := NewTelegramSender("123:abc", "chat-1")
	sender.apiBase = srv.URL

	err := sender.Send(context.Background(), "Opportunity found", "Sony WH-1000XM4\nhttps://www.ebay.co.uk/itm/1")
	require.NoError(t, err)

	assert.Equal(t, "chat-1", payload["chat_id"])
	assert.Equal(t, true, payload["disable_web_page_preview"])
	assert.Contains(t, payload["text"], "*Opportunity found*")
}

func TestTelegramSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	sender := NewTelegramSender("bad", "chat-1")
	sender.apiBase = srv.URL

	err := sender.Send(context.Background(), "title", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestDiscordSendTruncatesLongContent(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	sender := NewDiscordSender(srv.URL)

	long := strings.Repeat("lego star wars: 3 new finds\n", 200)
	err := sender.Send(context.Background(), "Scan complete", long)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(payload["content"]), discordContentLimit)
	assert.True(t, strings.HasSuffix(payload["content"], "\n..."))
	assert.Contains(t, payload["content"], "**Scan complete**")
}

func TestDiscordSendShortContentUntouched(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	sender := NewDiscordSender(srv.URL)

	err := sender.Send(context.Background(), "Scan complete", "2 new opportunities")
	require.NoError(t, err)
	assert.Equal(t, "**Scan complete**\n2 new opportunities", payload["content"])
}
