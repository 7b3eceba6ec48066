package mail

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/landingkit/seminar-signups/internal/entity"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// Send delivers one message over SMTP. gomail has no context support, so ctx is only checked before dialing.
func (s *EmailSender) Send(ctx context.Context, msg entity.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("email recipient is empty")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s email via SMTP: %w", msg.Kind, err)
	}
	return nil
}
