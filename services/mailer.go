package services

import (
	"fmt"
	"os"

	"estately-server/logger"
	"estately-server/models"

	"github.com/spf13/cast"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. All knobs come from the
// environment: SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, SMTP_FROM.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailer() *Mailer {
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: cast.ToInt(os.Getenv("SMTP_PORT")),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (m *Mailer) configured() bool {
	return m.host != "" && m.port > 0 && m.from != ""
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if !m.configured() {
		logger.S().Debugw("mail skipped, SMTP not configured", "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := dialer.DialAndSend(msg); err != nil {
		logger.S().Errorw("mail delivery failed", "to", to, "error", err)
		return err
	}
	return nil
}

// SendAppointmentConfirmation mails both parties after an agent confirms a viewing.
func (m *Mailer) SendAppointmentConfirmation(apt *models.Appointment, visitorEmail, agentEmail, propertyTitle string) {
	when := fmt.Sprintf("%s at %02d:00", apt.Date.Format("Monday, January 2"), apt.Hour)
	body := fmt.Sprintf(
		"<p>Your viewing of <b>%s</b> is confirmed for %s.</p><p>Reference #%d</p>",
		propertyTitle, when, apt.ID,
	)
	m.send(visitorEmail, "Viewing confirmed: "+propertyTitle, body)
	m.send(agentEmail, "Viewing confirmed: "+propertyTitle, body)
}

// SendPasswordResetEmail delivers the short-lived reset link.
func (m *Mailer) SendPasswordResetEmail(to, token string) error {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:4000"
	}
	body := fmt.Sprintf(
		"<p>We received a request to reset your password.</p><p><a href=\"%s/resetpassword?token=%s\">Reset password</a></p><p>The link expires in 10 minutes.</p>",
		base, token,
	)
	return m.send(to, "Reset your password", body)
}
