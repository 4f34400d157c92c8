package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSenderPostsPayload(t *testing.T) {
	var got mailWebhookRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, "noreply@critiq.dev")

	err := sender.Send("alice@example.com", "Confirmation code", "code: abc")
	require.NoError(t, err)

	assert.Equal(t, "noreply@critiq.dev", got.From)
	assert.Equal(t, "alice@example.com", got.To)
	assert.Equal(t, "Confirmation code", got.Subject)
	assert.Equal(t, "code: abc", got.Body)
}

func TestWebhookSenderRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, "noreply@critiq.dev")

	err := sender.Send("alice@example.com", "s", "b")
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send("alice@example.com", "s", "b"))
}
