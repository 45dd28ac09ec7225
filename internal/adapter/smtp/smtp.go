// Package smtp delivers transactional email over a plain-auth SMTP relay.
package smtp

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"colab/internal/app"
	"colab/internal/domain"
)

// Mailer implements app.Mailer over net/smtp.
type Mailer struct {
	addr string // host:port
	auth smtp.Auth
	from string
}

// New creates a mailer for the given relay. Auth is skipped when username
// is empty, which suits local development relays like MailHog.
func New(host, port, username, password, from string) *Mailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Mailer{addr: host + ":" + port, auth: auth, from: from}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, htmlBody)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", to, err)
	}
	return nil
}

// SendVerification mails the email verification link to a new account.
func (m *Mailer) SendVerification(ctx context.Context, to, name, verifyURL string) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Verify your email address to finish setting up your account:</p>`+
			`<p><a href="%s">Verify email</a></p>`, name, verifyURL)
	return m.send(to, "Verify your email", body)
}

// SendProjectInvite mails a project invitation. For unknown recipients the
// URL points at the invite acceptance flow; for existing users it links
// straight to the project.
func (m *Mailer) SendProjectInvite(ctx context.Context, to, inviterName, projectName, inviteURL string, role domain.MemberRole) error {
	body := fmt.Sprintf(
		`<p>%s invited you to join <strong>%s</strong> as %s.</p>`+
			`<p><a href="%s">Open project</a></p>`, inviterName, projectName, role, inviteURL)
	return m.send(to, fmt.Sprintf("You've been invited to %s", projectName), body)
}

var _ app.Mailer = (*Mailer)(nil)

// LogMailer logs mail instead of sending it; used when no relay is
// configured so verification links stay reachable in development.
type LogMailer struct{}

func (LogMailer) SendVerification(ctx context.Context, to, name, verifyURL string) error {
	log.Printf("mail (dry run): verification for %s <%s>: %s", name, to, verifyURL)
	return nil
}

func (LogMailer) SendProjectInvite(ctx context.Context, to, inviterName, projectName, inviteURL string, role domain.MemberRole) error {
	log.Printf("mail (dry run): %s invited %s to %q as %s: %s", inviterName, to, projectName, role, inviteURL)
	return nil
}

var _ app.Mailer = LogMailer{}
