// Package mail implements the outbound email transport over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"easychat/contract"
)

// SMTPConfig describes the mail server and sender account.
// Password is intentionally absent: the credential is resolved per send
// and passed to NewSMTPMailer by the caller.
type SMTPConfig struct {
	Host    string
	Port    int
	User    string
	UseTLS  bool
	Timeout time.Duration
}

// SMTPMailer sends a single email over SMTP with STARTTLS.
// It implements contract.Mailer.
type SMTPMailer struct {
	config   SMTPConfig
	password string
}

func NewSMTPMailer(config SMTPConfig, password string) *SMTPMailer {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &SMTPMailer{config: config, password: password}
}

// Send delivers one mail to every To and Bcc recipient in a single SMTP
// transaction.
func (m *SMTPMailer) Send(ctx context.Context, mail contract.Mail) error {
	recipients := append(append([]string(nil), mail.To...), mail.Bcc...)
	if len(recipients) == 0 {
		return fmt.Errorf("mail has no recipients")
	}

	msg := BuildMessage(mail)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	// Create connection with timeout
	dialer := &net.Dialer{Timeout: m.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if m.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: m.config.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.config.User != "" && m.password != "" {
		auth := smtp.PlainAuth("", m.config.User, m.password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(mail.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// Quit failures after a completed DATA are ignored: the message was sent.
	_ = client.Quit()
	return nil
}

// BuildMessage constructs the RFC 5322 message with headers. When both
// bodies are present the message is multipart/alternative, text part first.
func BuildMessage(mail contract.Mail) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", mail.From))
	if len(mail.To) > 0 {
		msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(mail.To, ", ")))
	}
	if len(mail.Bcc) > 0 {
		msg.WriteString(fmt.Sprintf("Bcc: %s\r\n", strings.Join(mail.Bcc, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mail.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	hasHTML := mail.HTML != ""
	hasText := mail.Text != ""

	switch {
	case hasHTML && hasText:
		boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
		msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
		msg.WriteString("\r\n")

		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(mail.Text)
		msg.WriteString("\r\n")

		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(mail.HTML)
		msg.WriteString("\r\n")

		msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	case hasHTML:
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(mail.HTML)
	default:
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(mail.Text)
	}

	return msg.String()
}
