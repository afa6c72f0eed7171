package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer sends transactional email. The payment flow depends on this
// interface so tests can record sends without a mail server.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// MailService delivers mail over SMTP.
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewMailService constructs a MailService.
func NewMailService(host, port, username, password, from string) *MailService {
	return &MailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers a plain-text message. An unconfigured service logs and
// returns nil so local setups work without SMTP credentials.
func (s *MailService) Send(to []string, subject, body string) error {
	if s.host == "" {
		log.Println("[Mail] SMTP host not configured, skipping send")
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.from, to, []byte(msg)); err != nil {
		log.Printf("[Mail] Failed to send message: %v", err)
		return err
	}

	return nil
}
