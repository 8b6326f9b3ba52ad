package notify

import (
	"context"
	"errors"
	"testing"

	gomail "github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
)

// fakeDialer は指定回数だけ失敗してから成功するDialerです。
type fakeDialer struct {
	failures int
	calls    int
	last     *gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.calls++
	d.last = m[0]
	if d.calls <= d.failures {
		return errors.New("connection reset")
	}
	return nil
}

func TestSMTPSender_Send(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantErr   bool
		wantCalls int
	}{
		{name: "first attempt succeeds", failures: 0, wantCalls: 1},
		{name: "succeeds after retries", failures: 2, wantCalls: 3},
		{name: "gives up after three attempts", failures: 5, wantErr: true, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDialer{failures: tt.failures}
			s := &SMTPSender{dialer: d, from: "noreply@example.com"}

			err := s.Send(context.Background(), Message{To: "arun@example.com", Subject: "Hello", Body: "Hi"})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, d.calls)
			assert.Equal(t, []string{"arun@example.com"}, d.last.GetHeader("To"))
			assert.Equal(t, []string{"Hello"}, d.last.GetHeader("Subject"))
		})
	}
}

func TestSMTPSender_Send_CanceledContext(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{dialer: d, from: "noreply@example.com"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, Message{To: "arun@example.com"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, d.calls)
}

func TestNewSMTPSender(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "user", "pass", "noreply@example.com")

	assert.NotNil(t, s.dialer)
	assert.Equal(t, "noreply@example.com", s.from)
}
