package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pobyzaarif/goshortcute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmail(t *testing.T) {
	var got payloadSendEmail
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3.1/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := NewMailjetRepository(MailjetConfig{
		MailjetBaseURL:           srv.URL,
		MailjetBasicAuthUsername: "key",
		MailjetBasicAuthPassword: "secret",
		MailjetSenderEmail:       "shop@example.com",
		MailjetSenderName:        "Kawaii Shop",
	})

	err := repo.SendEmail("Mochi", "mochi@example.com", "Your order", "Thanks!")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(auth, "Basic "))
	assert.Equal(t, "key:secret", goshortcute.StringtoBase64Decode(strings.TrimPrefix(auth, "Basic ")))
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "shop@example.com", got.Messages[0].From.Email)
	assert.Equal(t, []address{{Email: "mochi@example.com", Name: "Mochi"}}, got.Messages[0].To)
	assert.Equal(t, "Thanks!", got.Messages[0].TextPart)
}

func TestSendEmail_NegativeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ErrorMessage":"nope"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	repo := NewMailjetRepository(MailjetConfig{MailjetBaseURL: srv.URL})

	err := repo.SendEmail("Mochi", "mochi@example.com", "Your order", "Thanks!")
	assert.EqualError(t, err, "mailer service return negative response 401")
}
