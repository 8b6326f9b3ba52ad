package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

// SendGridSender はSendGridのv3 APIでメールを送信します。
type SendGridSender struct {
	apiKey string
	host   string
	from   *mail.Email
	client *rest.Client
}

// NewSendGridSender はSendGridSenderを生成します。
// httpClient にはタイムアウト設定済みのクライアントを渡します。host が空の場合はSendGridの既定ホストを使用します。
func NewSendGridSender(apiKey, from, host string, httpClient *http.Client) *SendGridSender {
	return &SendGridSender{
		apiKey: apiKey,
		host:   host,
		from:   mail.NewEmail("", from),
		client: &rest.Client{HTTPClient: httpClient},
	}
}

// Send はメッセージを送信します。2xx以外の応答はエラーになります。
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewSingleEmailPlainText(s.from, msg.Subject, mail.NewEmail("", msg.To), msg.Body)

	req := sendgrid.GetRequest(s.apiKey, sendGridEndpoint, s.host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(m)

	resp, err := s.client.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
