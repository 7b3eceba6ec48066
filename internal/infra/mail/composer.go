package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/landingkit/seminar-signups/internal/entity"
)

//go:embed templates/*
var templateFS embed.FS

const ConfirmationSubject = "You're Registered! First-Time Buyer Seminar Details"

// Composer renders the registrant confirmation and the operator notification.
type Composer struct {
	brand        Branding
	htmlConfirm  *htmltemplate.Template
	textConfirm  *template.Template
	notification *template.Template
}

func NewComposer(brand Branding) (*Composer, error) {
	htmlConfirm, err := htmltemplate.ParseFS(templateFS, "templates/confirmation.html")
	if err != nil {
		return nil, fmt.Errorf("parse confirmation html template: %w", err)
	}
	textConfirm, err := template.ParseFS(templateFS, "templates/confirmation.txt")
	if err != nil {
		return nil, fmt.Errorf("parse confirmation text template: %w", err)
	}
	notification, err := template.ParseFS(templateFS, "templates/notification.txt")
	if err != nil {
		return nil, fmt.Errorf("parse notification template: %w", err)
	}

	return &Composer{
		brand:        brand,
		htmlConfirm:  htmlConfirm,
		textConfirm:  textConfirm,
		notification: notification,
	}, nil
}

func (c *Composer) Confirmation(reg *entity.Registration, format entity.ConfirmationFormat) (entity.Email, error) {
	msg := entity.Email{
		Kind:    entity.EmailConfirmation,
		To:      reg.Email,
		Subject: ConfirmationSubject,
	}
	data := newTemplateData(reg, c.brand)

	var body bytes.Buffer
	if format == entity.ConfirmationText {
		if err := c.textConfirm.Execute(&body, data); err != nil {
			return entity.Email{}, fmt.Errorf("render text confirmation: %w", err)
		}
		msg.TextBody = body.String()
		return msg, nil
	}

	if err := c.htmlConfirm.Execute(&body, data); err != nil {
		return entity.Email{}, fmt.Errorf("render html confirmation: %w", err)
	}
	msg.HTMLBody = body.String()
	return msg, nil
}

func (c *Composer) Notification(reg *entity.Registration, to string) (entity.Email, error) {
	var body bytes.Buffer
	if err := c.notification.Execute(&body, newTemplateData(reg, c.brand)); err != nil {
		return entity.Email{}, fmt.Errorf("render notification: %w", err)
	}

	return entity.Email{
		Kind:     entity.EmailNotification,
		To:       to,
		Subject:  fmt.Sprintf("🎯 New Seminar Registration: %s %s", reg.FirstName, reg.LastName),
		TextBody: body.String(),
	}, nil
}
