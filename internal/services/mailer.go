package services

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends outbound notification email. Delivery is always best-effort;
// callers log failures and move on.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates a Mailer, or returns nil when SMTP is not configured.
func NewMailer(host, port, user, password, from string) *Mailer {
	if host == "" {
		return nil
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		p = 587
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, p, user, password),
		from:   from,
	}
}

// SendProjectInvite mails a project invitation.
func (m *Mailer) SendProjectInvite(to, name, projectName, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("You've been added to %s", projectName))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYou've been added to the project %q. Open the dashboard to get started.\n\nInvite ref: %s\n",
		name, projectName, token))
	return m.dialer.DialAndSend(msg)
}

// SendEventReminder mails a reminder for an upcoming event.
func (m *Mailer) SendEventReminder(to, name, eventTitle, when string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Reminder: %s", eventTitle))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\n%q starts %s. See you there!\n",
		name, eventTitle, when))
	return m.dialer.DialAndSend(msg)
}
