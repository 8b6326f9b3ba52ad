package notify

import (
	"context"

	gomail "github.com/go-mail/mail/v2"
)

// smtpAttempts はSMTP送信の最大試行回数です。
const smtpAttempts = 3

// mailDialer はgo-mailのDialerのうち使用する部分です。
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender はSMTPサーバー経由でメールを送信します。
type SMTPSender struct {
	dialer mailDialer
	from   string
}

// NewSMTPSender はSMTPSenderを生成します。
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send はメッセージを送信します。失敗した場合は最大3回まで試行します。
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("To", msg.To)
	m.SetHeader("From", s.from)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	var err error
	for i := 0; i < smtpAttempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = s.dialer.DialAndSend(m); err == nil {
			return nil
		}
	}
	return err
}
