package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendEscalationAlert(toEmail, conversationId, preview string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

// SendEscalationAlert notifies the organization's support inbox that a
// conversation needs a human. Failures are the caller's to log; escalation
// itself must never depend on mail delivery.
func (s *emailService) SendEscalationAlert(toEmail, conversationId, preview string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "A conversation was escalated to your team")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Conversation escalated</h2>
			<p>A visitor conversation needs an operator.</p>
			<p><b>Conversation:</b> %s</p>
			<blockquote style="border-left: 3px solid #ccc; padding-left: 10px; color: #555;">%s</blockquote>
			<p>Open your dashboard to reply.</p>
		</div>
	`, conversationId, preview)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send escalation alert to %s: %w", toEmail, err)
	}
	return nil
}
