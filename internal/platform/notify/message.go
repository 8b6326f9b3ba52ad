// Package notify はアカウント通知メールの生成と送信を提供します。
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// テンプレート名
const (
	TemplateWelcome      = "welcome.tmpl"
	TemplateCancellation = "cancellation.tmpl"
)

// Message は送信する1通のメールです。
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender はメッセージを送信するトランスポートです。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recipient はテンプレートに渡す宛先情報です。
type Recipient struct {
	Email string
	Name  string
}

// Render はテンプレートの "subject" と "plainBody" を展開してMessageを組み立てます。
func Render(name string, to Recipient) (Message, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return Message{}, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var subject, body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", to); err != nil {
		return Message{}, err
	}
	if err := tmpl.ExecuteTemplate(&body, "plainBody", to); err != nil {
		return Message{}, err
	}

	return Message{
		To:      to.Email,
		Subject: strings.TrimSpace(subject.String()),
		Body:    strings.TrimSpace(body.String()),
	}, nil
}
