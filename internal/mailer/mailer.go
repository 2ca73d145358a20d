// Package mailer sends transactional email over SMTP with implicit TLS.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
)

// Sender holds SMTP connection settings. One Sender is shared by the
// delivery worker; each Send dials a fresh connection.
type Sender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSender(host, port, username, password, from string) *Sender {
	if from == "" {
		from = username
	}
	return &Sender{host: host, port: port, username: username, password: password, from: from}
}

// SendOTP emails a one-time code to the recipient.
func (s *Sender) SendOTP(to, code string) error {
	body := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires shortly.</p>", code)
	return s.send(to, "Your verification code", body)
}

func (s *Sender) send(to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	addr := s.host + ":" + s.port

	// Implicit TLS (port 465 style).
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}
