package mailer

import (
	"fmt"

	"commerce-service/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email. Delivery is best-effort: callers log
// failures and never roll back the operation that triggered the mail.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates an SMTP mailer from config
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a single HTML email
func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// WelcomeBody renders the welcome email body
func WelcomeBody(firstName string) string {
	return fmt.Sprintf(`<h1>Welcome, %s!</h1><p>Your account has been created. Happy shopping.</p>`, firstName)
}

// PasswordResetBody renders the password reset email body
func PasswordResetBody(token string) string {
	return fmt.Sprintf(`<h1>Password reset</h1><p>Use this token to reset your password: <b>%s</b></p><p>It expires in one hour.</p>`, token)
}
