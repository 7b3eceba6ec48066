package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/landingkit/seminar-signups/internal/entity"
	"github.com/landingkit/seminar-signups/internal/infra/mail"
)

type Config struct {
	Server   Server
	Store    Store
	Mail     Mail
	RabbitMQ RabbitMQ
	Redis    Redis
	Policy   PolicyOverrides
	Brand    Brand
}

type Server struct {
	Addr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	CORSOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

type Store struct {
	Driver          string `envconfig:"STORE_DRIVER" default:"sheets"`
	SpreadsheetID   string `envconfig:"SHEET_ID"`
	SheetName       string `envconfig:"SHEET_NAME" default:"Seminar Registrations"`
	CredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	Table           string `envconfig:"REGISTRATIONS_TABLE" default:"seminar_registrations"`
}

type Mail struct {
	Delivery      string `envconfig:"MAIL_DELIVERY" default:"smtp"`
	Host          string `envconfig:"MAIL_HOST"`
	Port          int    `envconfig:"MAIL_PORT" default:"587"`
	User          string `envconfig:"MAIL_USER"`
	Password      string `envconfig:"MAIL_PASS"`
	OperatorEmail string `envconfig:"OPERATOR_EMAIL" default:"hello@mathewgibeault.ca"`
}

type RabbitMQ struct {
	URL string `envconfig:"RABBITMQ_URL"`
}

type Redis struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	ClaimTTL time.Duration `envconfig:"DUPLICATE_CLAIM_TTL" default:"10m"`
}

// PolicyOverrides picks a variant preset; the other fields replace single settings of it.
type PolicyOverrides struct {
	Variant      string `envconfig:"REGISTRATION_VARIANT" default:"A"`
	Schema       string `envconfig:"SHEET_SCHEMA"`
	Duplicates   string `envconfig:"DUPLICATE_POLICY"`
	Confirmation string `envconfig:"CONFIRMATION_FORMAT"`
}

type Brand struct {
	From         string `envconfig:"MAIL_FROM"`
	Presenter    string `envconfig:"BRAND_PRESENTER"`
	Title        string `envconfig:"BRAND_TITLE"`
	Company      string `envconfig:"BRAND_COMPANY"`
	Phone        string `envconfig:"BRAND_PHONE"`
	ContactEmail string `envconfig:"BRAND_CONTACT_EMAIL"`
	Address      string `envconfig:"BRAND_ADDRESS"`
	Site         string `envconfig:"BRAND_SITE"`
	SeminarName  string `envconfig:"BRAND_SEMINAR_NAME"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sheets":
		if c.Store.SpreadsheetID == "" {
			return fmt.Errorf("SHEET_ID is required for the sheets store")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Mail.Delivery {
	case "smtp":
	case "queue":
		if c.RabbitMQ.URL == "" {
			return fmt.Errorf("RABBITMQ_URL is required when MAIL_DELIVERY=queue")
		}
	default:
		return fmt.Errorf("unknown MAIL_DELIVERY %q", c.Mail.Delivery)
	}

	if v := c.Policy.Variant; !strings.EqualFold(v, "A") && !strings.EqualFold(v, "B") {
		return fmt.Errorf("unknown REGISTRATION_VARIANT %q", v)
	}
	switch entity.SchemaName(normalize(c.Policy.Schema)) {
	case "", entity.SchemaExtended, entity.SchemaCompact:
	default:
		return fmt.Errorf("unknown SHEET_SCHEMA %q", c.Policy.Schema)
	}
	switch entity.DuplicatePolicy(normalize(c.Policy.Duplicates)) {
	case "", entity.DuplicatesSkip, entity.DuplicatesAllow:
	default:
		return fmt.Errorf("unknown DUPLICATE_POLICY %q", c.Policy.Duplicates)
	}
	switch entity.ConfirmationFormat(normalize(c.Policy.Confirmation)) {
	case "", entity.ConfirmationHTML, entity.ConfirmationText:
	default:
		return fmt.Errorf("unknown CONFIRMATION_FORMAT %q", c.Policy.Confirmation)
	}

	if c.Redis.Addr != "" && c.Redis.ClaimTTL <= 0 {
		return fmt.Errorf("DUPLICATE_CLAIM_TTL must be positive")
	}
	return nil
}

func (c *Config) RegistrationPolicy() entity.Policy {
	p := entity.PolicyForVariant(c.Policy.Variant)
	if v := normalize(c.Policy.Schema); v != "" {
		p.Schema = entity.SchemaByName(v)
	}
	if v := normalize(c.Policy.Duplicates); v != "" {
		p.Duplicates = entity.DuplicatePolicy(v)
	}
	if v := normalize(c.Policy.Confirmation); v != "" {
		p.Confirmation = entity.ConfirmationFormat(v)
	}
	return p
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Branding fills unset fields from the defaults.
func (c *Config) Branding() mail.Branding {
	b := mail.DefaultBranding()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&b.From, c.Brand.From)
	set(&b.Presenter, c.Brand.Presenter)
	set(&b.Title, c.Brand.Title)
	set(&b.Company, c.Brand.Company)
	set(&b.Phone, c.Brand.Phone)
	set(&b.ContactEmail, c.Brand.ContactEmail)
	set(&b.Address, c.Brand.Address)
	set(&b.Site, c.Brand.Site)
	set(&b.SeminarName, c.Brand.SeminarName)
	return b
}
