package mail

import (
	"github.com/landingkit/seminar-signups/internal/entity"
)

// Branding is the static text the templates are filled with.
type Branding struct {
	From         string
	Presenter    string
	Title        string
	Company      string
	Phone        string
	ContactEmail string
	Address      string
	Site         string
	SeminarName  string
}

func DefaultBranding() Branding {
	return Branding{
		From:         "hello@mathewgibeault.ca",
		Presenter:    "Mathew Gibeault",
		Title:        "Mortgage Development Manager",
		Company:      "National Bank",
		Phone:        "647-456-8120",
		ContactEmail: "hello@mathewgibeault.ca",
		Address:      "2002 Sheppard Ave E, North York, ON M2J 5B3",
		Site:         "seminar.mathewgibeault.ca",
		SeminarName:  "First-Time Home Buyer Seminar",
	}
}

type templateData struct {
	Reg          *entity.Registration
	Brand        Branding
	RegisteredOn string
	RegisteredAt string
}

func newTemplateData(reg *entity.Registration, b Branding) templateData {
	return templateData{
		Reg:          reg,
		Brand:        b,
		RegisteredOn: reg.Timestamp.Format("1/2/2006"),
		RegisteredAt: entity.FormatTimestamp(reg.Timestamp),
	}
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	dialer   dialer
}

