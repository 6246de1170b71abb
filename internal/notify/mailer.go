package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPConfig はSMTPメーラーの設定。
type SMTPConfig struct {
	Host string
	Port string
	From string
}

// SMTPMailer はSMTP経由で認証コードメールを送信するMailerの実装。
type SMTPMailer struct {
	config SMTPConfig
	// send は送信関数。テストで差し替えるためのフック。
	send func(addr string, from string, to []string, msg []byte) error
}

// NewSMTPMailer はSMTPMailerを生成する。
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		send: func(addr string, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// SendVerificationMail は認証コードを指定アドレスへ送信する。
func (m *SMTPMailer) SendVerificationMail(_ context.Context, email, code string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Verify your email\r\n\r\nYour verification code is: %s\r\nThe code expires shortly, so enter it soon.\r\n",
		m.config.From, email, code,
	)

	addr := m.config.Host + ":" + m.config.Port
	if err := m.send(addr, m.config.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}
	return nil
}

// compile-time interface check
var _ Mailer = (*SMTPMailer)(nil)
