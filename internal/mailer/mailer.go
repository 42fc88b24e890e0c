package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP. Each send dials a fresh
// connection; batch callers pace themselves with their own delay.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// New creates a mailer. Returns nil when host is empty so callers can treat
// an unconfigured SMTP setup as mail-disabled.
func New(host string, port int, username, password, from, fromName string) *Mailer {
	if host == "" {
		return nil
	}
	return &Mailer{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

// SendCredentials mails a newly created account its one-time password.
func (m *Mailer) SendCredentials(to, name, email, password string) error {
	subject := "Your employee account"
	return m.send(to, subject, credentialBody(name, email, password))
}

// SendCertificate mails an attendee a link to their training certificate.
func (m *Mailer) SendCertificate(to, name, trainingTitle, url string) error {
	subject := fmt.Sprintf("Certificate: %s", trainingTitle)
	return m.send(to, subject, certificateBody(name, trainingTitle, url))
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func credentialBody(name, email, password string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>An employee account has been created for you.</p>
<p>Email: <b>%s</b><br>Temporary password: <b>%s</b></p>
<p>Please sign in and change your password. This password will not be sent again.</p>`,
		name, email, password)
}

func certificateBody(name, trainingTitle, url string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Your certificate for <b>%s</b> is ready.</p>
<p><a href="%s">Download certificate</a></p>`,
		name, trainingTitle, url)
}
