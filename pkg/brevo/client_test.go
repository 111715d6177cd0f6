package brevo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nurserysera/storefront-backend/pkg/config"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.MailConfig{
		APIKey:   "key",
		BaseURL:  srv.URL,
		From:     "info@example.com",
		FromName: "nursery sera",
		Timeout:  5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestSendReturnsMessageID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, sendPath, r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "y@example.com", body["to"].([]any)[0].(map[string]any)["email"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<msg-1@smtp-relay>"}`))
	})

	id, err := client.Send(context.Background(), Message{
		ToEmail:     "y@example.com",
		ToName:      "Tanaka Yui",
		Subject:     "thanks",
		HTMLContent: "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<msg-1@smtp-relay>", id)
}

func TestSendMapsProviderErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"upstream broken"}`))
	})

	_, err := client.Send(context.Background(), Message{ToEmail: "y@example.com", Subject: "s"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	assert.Contains(t, err.Error(), "mail provider rejected message")
}

func TestSendRequiresRecipient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Send(context.Background(), Message{Subject: "s"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.MailConfig{}, nil)
	require.Error(t, err)
}
