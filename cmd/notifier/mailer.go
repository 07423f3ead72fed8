package main

import (
	"fmt"
	"log"
	"net/smtp"

	"tavola/internal/config"
)

// mailer sends plain-text email over SMTP. With no SMTP_HOST configured
// it logs deliveries instead, which keeps local development queue-safe.
type mailer struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func newMailerFromEnv() *mailer {
	host := config.GetEnv("SMTP_HOST", "")
	m := &mailer{
		host: host,
		port: config.GetEnv("SMTP_PORT", "587"),
		from: config.GetEnv("SMTP_FROM", "no-reply@tavola.example"),
	}
	if host != "" {
		user := config.GetEnv("SMTP_USER", "")
		if user != "" {
			m.auth = smtp.PlainAuth("", user, config.MustGetEnv("SMTP_PASSWORD"), host)
		}
	}
	return m
}

func (m *mailer) Send(to, subject, body string) error {
	if m.host == "" {
		log.Printf("email (dry run) to %s: %s", to, subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
