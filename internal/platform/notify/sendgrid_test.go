package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGridSender_Send(t *testing.T) {
	var gotAuth, gotPath string
	var payload struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Subject          string `json:"subject"`
		Personalizations []struct {
			To []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("SG.key", "noreply@example.com", srv.URL, &http.Client{Timeout: time.Second})

	err := s.Send(context.Background(), Message{To: "arun@example.com", Subject: "Hello", Body: "Hi"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer SG.key", gotAuth)
	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "noreply@example.com", payload.From.Email)
	assert.Equal(t, "Hello", payload.Subject)
	require.Len(t, payload.Personalizations, 1)
	require.Len(t, payload.Personalizations[0].To, 1)
	assert.Equal(t, "arun@example.com", payload.Personalizations[0].To[0].Email)
}

func TestSendGridSender_Send_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := NewSendGridSender("wrong", "noreply@example.com", srv.URL, &http.Client{Timeout: time.Second})

	err := s.Send(context.Background(), Message{To: "arun@example.com", Subject: "Hello", Body: "Hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
