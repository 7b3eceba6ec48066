package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landingkit/seminar-signups/internal/entity"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "Seminar Registrations", c.Store.SheetName)
	assert.Equal(t, "hello@mathewgibeault.ca", c.Mail.OperatorEmail)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)

	p := c.RegistrationPolicy()
	assert.Equal(t, entity.SchemaExtended, p.Schema.Name)
	assert.Equal(t, entity.DuplicatesSkip, p.Duplicates)
}

func TestPolicyOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REGISTRATION_VARIANT", "B")
	t.Setenv("DUPLICATE_POLICY", "skip")

	c, err := Load()
	require.NoError(t, err)

	p := c.RegistrationPolicy()
	assert.Equal(t, entity.SchemaCompact, p.Schema.Name)
	assert.Equal(t, entity.DuplicatesSkip, p.Duplicates)
	assert.Equal(t, entity.ConfirmationText, p.Confirmation)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sheets")
	t.Setenv("SHEET_ID", "")
	_, err := Load()
	assert.ErrorContains(t, err, "SHEET_ID")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MAIL_DELIVERY", "queue")
	_, err = Load()
	assert.ErrorContains(t, err, "RABBITMQ_URL")

	t.Setenv("MAIL_DELIVERY", "smtp")
	t.Setenv("DUPLICATE_POLICY", "merge")
	_, err = Load()
	assert.ErrorContains(t, err, "DUPLICATE_POLICY")
}

func TestBrandingOverrides(t *testing.T) {
	c := &Config{Brand: Brand{Presenter: "Jane Doe"}}
	b := c.Branding()

	assert.Equal(t, "Jane Doe", b.Presenter)
	assert.Equal(t, "National Bank", b.Company)
}

func TestPolicyOverridesIgnoreCase(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REGISTRATION_VARIANT", "b")
	t.Setenv("SHEET_SCHEMA", "Extended")
	t.Setenv("DUPLICATE_POLICY", "SKIP")
	t.Setenv("CONFIRMATION_FORMAT", "HTML")

	c, err := Load()
	require.NoError(t, err)

	p := c.RegistrationPolicy()
	assert.Equal(t, entity.SchemaExtended, p.Schema.Name)
	assert.Equal(t, entity.DuplicatesSkip, p.Duplicates)
	assert.Equal(t, entity.ConfirmationHTML, p.Confirmation)
}

func TestValidateRejectsUnknownPolicyValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	t.Setenv("SHEET_SCHEMA", "wide")
	_, err := Load()
	assert.ErrorContains(t, err, "SHEET_SCHEMA")

	t.Setenv("SHEET_SCHEMA", "")
	t.Setenv("REGISTRATION_VARIANT", "C")
	_, err = Load()
	assert.ErrorContains(t, err, "REGISTRATION_VARIANT")
}

func TestClaimTTLDefaultsToFinite(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, c.Redis.ClaimTTL)

	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DUPLICATE_CLAIM_TTL", "0s")
	_, err = Load()
	assert.ErrorContains(t, err, "DUPLICATE_CLAIM_TTL")
}
