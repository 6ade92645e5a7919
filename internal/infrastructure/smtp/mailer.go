package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/learnhub/user-service/internal/config"
	"github.com/learnhub/user-service/internal/domain"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// Notifier delivers one-time codes by email, selecting the message template
// from the OTP purpose.
type Notifier struct {
	mailer Mailer
}

func NewNotifier(m Mailer) *Notifier {
	return &Notifier{mailer: m}
}

func (n *Notifier) Send(_ context.Context, identity, code, purpose string) error {
	var subject, intro, outro string
	switch purpose {
	case domain.OTPPurposePasswordReset:
		subject = "LearnHub - Password Reset Code"
		intro = "You recently requested to reset your password. Use the following code to proceed:"
		outro = "If you didn't request this password reset, please ignore this email or contact support."
	default:
		subject = "LearnHub - Email Verification Code"
		intro = "Thank you for registering with LearnHub. To complete your registration, use the following code:"
		outro = "If you didn't request this verification, please ignore this email."
	}

	body := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px;">
    <h2>%s</h2>
    <p>%s</p>
    <div style="padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px;">%s</div>
    <p>This code will expire in 10 minutes.</p>
    <p>%s</p>
    <p>Regards,<br>LearnHub Team</p>
  </div>
</body>
</html>`, subject, intro, code, outro)

	return n.mailer.SendEmail(identity, subject, body)
}
