package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanryp/servicedesk-sub004/internal/config"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("helpdesk@bank.test", Message{
		To:      []string{" manager@bank.test ", ""},
		Subject: "Approval needed",
		Body:    "TCK-1A2B3C4D is waiting",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"helpdesk@bank.test"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"manager@bank.test"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Approval needed"}, msg.GetHeader("Subject"))

	_, err = buildMessage("helpdesk@bank.test", Message{To: []string{" "}, Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = buildMessage("", Message{To: []string{"a@b.test"}, Subject: "x"})
	assert.Error(t, err)

	_, err = buildMessage("helpdesk@bank.test", Message{To: []string{"a@b.test"}})
	assert.Error(t, err)
}

func TestNewMailerDisabledWithoutHost(t *testing.T) {
	assert.Nil(t, NewMailer(config.NotificationConfig{EmailFrom: "a@b.test"}))
	assert.NotNil(t, NewMailer(config.NotificationConfig{EmailFrom: "a@b.test", SMTPHost: "smtp.bank.test", SMTPPort: 587}))
}

func TestWebhookPost(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, time.Second)
	require.NoError(t, hook.Post(context.Background(), map[string]string{"type": "ticket_created"}))
	assert.Equal(t, "ticket_created", got["type"])
}

func TestWebhookRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL, time.Second).Post(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNewWebhookDisabledWithoutURL(t *testing.T) {
	assert.Nil(t, NewWebhook("  ", time.Second))
}
