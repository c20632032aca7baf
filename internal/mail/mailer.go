package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/flamecrumble/storefront-backend/internal/config"
)

// Mailer delivers verification codes. Callers fire it from a goroutine and
// never block a response on delivery.
type Mailer interface {
	SendVerificationCode(email, code string) error
}

// SMTPMailer sends through a plain SMTP relay (STARTTLS on port 587).
type SMTPMailer struct {
	host string
	port string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		auth: smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost),
		from: cfg.EmailFrom,
	}
}

func (m *SMTPMailer) SendVerificationCode(email, code string) error {
	subject := "flame&crumble: Email Verification Code"
	body := fmt.Sprintf(
		"Thank you for registering with flame&crumble!\r\n\r\n"+
			"Please use the following code to verify your email address: %s\r\n\r\n"+
			"This code is valid for 15 minutes.\r\n\r\n"+
			"If you did not request this, please ignore this email.\r\n", code)

	msg := []byte("From: flame&crumble <" + m.from + ">\r\n" +
		"To: " + email + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)

	return smtp.SendMail(m.host+":"+m.port, m.auth, m.from, []string{email}, msg)
}

// LogMailer is used when no SMTP relay is configured; it only records that a
// code would have been sent.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(email, code string) error {
	log.Printf("mail: verification code for %s: %s", email, code)
	return nil
}
