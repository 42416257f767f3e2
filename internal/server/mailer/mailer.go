// Package mailer отправляет письма с одноразовыми кодами через SMTP (gomail).
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
)

// Subject - тема письма со сбросом пароля.
const Subject = "Password Reset OTP"

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2>Password Reset Request</h2>
	<p>You requested to reset your password. Use the following OTP to proceed:</p>
	<div style="background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">{{.Code}}</div>
	<p>This OTP will expire in {{.Minutes}} minutes.</p>
	<p>If you didn't request this, please ignore this email.</p>
</div>`))

// SMTPMailer - отправка писем через SMTP-сервер из конфига.
type SMTPMailer struct {
	from string
	send func(m *gomail.Message) error
}

// New создаёт SMTPMailer. Соединение открывается на каждое письмо.
func New(cfg config.MailConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		from: cfg.From,
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

// NewWithSender - то же, но с собственной функцией отправки (тесты, dev-режим).
func NewWithSender(from string, send func(m *gomail.Message) error) *SMTPMailer {
	return &SMTPMailer{from: from, send: send}
}

// SendOTP отправляет одно HTML-письмо с кодом.
func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.otpMessage(to, code, ttl)
	if err != nil {
		return err
	}
	if err := m.send(msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) otpMessage(to, code string, ttl time.Duration) (*gomail.Message, error) {
	var body bytes.Buffer
	err := otpTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(ttl.Minutes())})
	if err != nil {
		return nil, fmt.Errorf("render otp mail: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", Subject)
	msg.SetBody("text/html", body.String())
	return msg, nil
}
