// Package email sends transactional mail over SMTP.
package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"gopkg.in/gomail.v2"
)

var ErrEmailServiceNotConfigured = errors.New("email service not configured")

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	// AppURL is the frontend origin used for links in mail bodies.
	AppURL string
}

// Invitation is what the invitation mail needs to render.
type Invitation struct {
	To            string
	WorkspaceName string
	InviterName   string
	Role          string
	Token         string
	ExpiresAt     time.Time
}

type SMTPEmailService struct {
	config SMTPConfig
	send   func(*gomail.Message) error
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return &SMTPEmailService{
		config: config,
		send:   func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

var invitationHTML = template.Must(template.New("invitation").Parse(`<html>
<body>
	<h2>You're invited to {{.WorkspaceName}}</h2>
	<p>{{.InviterName}} invited you to join <strong>{{.WorkspaceName}}</strong> on ConnectHub as {{.Role}}.</p>
	<p><a href="{{.AcceptURL}}">Accept invitation</a></p>
	<p>Or copy and paste this URL into your browser:</p>
	<p>{{.AcceptURL}}</p>
	<p>This invitation expires on {{.Expires}}.</p>
</body>
</html>`))

func (s *SMTPEmailService) SendInvitationEmail(inv Invitation) error {
	if s.config.Host == "" {
		return ErrEmailServiceNotConfigured
	}
	subject, html, plain, err := s.renderInvitation(inv)
	if err != nil {
		return err
	}
	return s.sendEmail(inv.To, subject, html, plain)
}

func (s *SMTPEmailService) renderInvitation(inv Invitation) (subject, htmlBody, plainBody string, err error) {
	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", s.config.AppURL, url.QueryEscape(inv.Token))
	expires := inv.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 MST")

	var html bytes.Buffer
	err = invitationHTML.Execute(&html, map[string]string{
		"WorkspaceName": inv.WorkspaceName,
		"InviterName":   inv.InviterName,
		"Role":          inv.Role,
		"AcceptURL":     acceptURL,
		"Expires":       expires,
	})
	if err != nil {
		return "", "", "", fmt.Errorf("failed to render invitation email: %w", err)
	}

	plain := fmt.Sprintf(`%s invited you to join %s on ConnectHub as %s.

Accept the invitation by visiting:
%s

This invitation expires on %s.
`, inv.InviterName, inv.WorkspaceName, inv.Role, acceptURL, expires)

	subject = fmt.Sprintf("Join %s on ConnectHub", inv.WorkspaceName)
	return subject, html.String(), plain, nil
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
