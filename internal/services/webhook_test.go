package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendFormSubmission(t *testing.T) {
	var received DiscordWebhookRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := SendFormSubmission(server.URL, "Great app", "alice@example.com", "keep it up", 3)
	require.NoError(t, err)

	assert.Equal(t, Username, received.Username)
	require.Len(t, received.Embeds, 1)

	embed := received.Embeds[0]
	assert.Equal(t, "New Form Submission", embed.Title)
	assert.Equal(t, ColorBlue, embed.Color)
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "3/5 (⭐⭐⭐)", embed.Fields[2].Value)
	assert.NotEmpty(t, embed.Timestamp)
}

func TestSendFormSubmissionErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := SendFormSubmission(server.URL, "t", "c", "m", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSendFormSubmissionUnreachable(t *testing.T) {
	assert.Error(t, SendFormSubmission("http://127.0.0.1:1", "t", "c", "m", 1))
}
