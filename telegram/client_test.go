package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		Client: srv.Client(),
		Host:   srv.URL,
		Token:  "test-token",
	}
}

func TestClientGetUpdates(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/bottest-token/getUpdates", r.URL.Path)
		var params map[string]any
		assert.NoError(json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(float64(42), params["offset"])
		// edits must be delivered too, or keyword edits into old messages
		// would never reach moderation
		assert.Equal([]any{"message", "edited_message"}, params["allowed_updates"])

		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{
					"update_id": 43,
					"message": map[string]any{
						"message_id": 7,
						"from":       map[string]any{"id": 5, "is_bot": false},
						"chat":       map[string]any{"id": -100, "type": "supergroup"},
						"text":       "hola kerem",
					},
				},
			},
		})
	})

	updates, err := c.GetUpdates(ctx, 42, 0)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(int64(43), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(7, updates[0].Message.MessageID)
	assert.Equal(int64(-100), updates[0].Message.Chat.ID)
	assert.Equal("hola kerem", updates[0].Message.Body())
}

func TestClientErrorEnvelope(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  400,
			"description": "Bad Request: message can't be deleted",
		})
	})

	err := c.DeleteMessage(ctx, -100, 7)
	require.Error(t, err)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(400, apiErr.Code)
	assert.True(apiErr.IsPermissionDenied())
	assert.False(apiErr.IsNotFound())
}

func TestClientForbiddenIsPermissionDenied(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  403,
			"description": "Forbidden: bot is not a member of the supergroup chat",
		})
	})

	err := c.DeleteMessage(ctx, -100, 7)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.True(apiErr.IsPermissionDenied())
}

func TestClientGetChatMember(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/bottest-token/getChatMember", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"status": "administrator",
				"user":   map[string]any{"id": 5},
			},
		})
	})

	member, err := c.GetChatMember(ctx, -100, 5)
	require.NoError(t, err)
	assert.Equal("administrator", member.Status)
}

func TestMessageCommand(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text     string
		entities []MessageEntity
		out      string
	}{
		{out: "", text: ""},
		{out: "", text: "plain message"},
		{out: "", text: "/looks_like_command_but_no_entity"},
		{out: "start", text: "/start", entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}},
		{out: "tema_estado", text: "/tema_estado", entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 12}}},
		{out: "tema_reset", text: "/tema_reset@charla_bot", entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 22}}},
		{out: "start", text: "/START", entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}},
		// mid-text command entity is not a command invocation
		{out: "", text: "try /start", entities: []MessageEntity{{Type: "bot_command", Offset: 4, Length: 6}}},
	}

	for _, fix := range fixtures {
		m := &Message{Text: fix.text, Entities: fix.entities}
		assert.Equal(fix.out, m.Command())
	}
}
