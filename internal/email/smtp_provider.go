package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"emploi_backend/internal/config"
)

// SMTPProvider implements Provider over gomail.
type SMTPProvider struct {
	cfg *config.Config
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.cfg.Email.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		p.cfg.Email.SMTPHost,
		p.cfg.Email.SMTPPort,
		p.cfg.Email.SMTPUsername,
		p.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

func (p *SMTPProvider) SendPasswordReset(to, token string) error {
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p>Your reset code: <b>%s</b></p>"+
			"<p>The code expires in 1 hour. If you did not request a reset, ignore this message.</p>",
		token,
	)
	return p.Send(to, "Password reset", body)
}
