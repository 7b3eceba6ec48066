package usecase

import (
	"bytes"
	"encoding/json"
)

// RegisterInput is the body the landing page posts. Email syntax is only checked in the
// browser; any non-empty value is stored so the operator can follow up.
type RegisterInput struct {
	FirstName   string   `json:"firstName" validate:"required,max=200"`
	LastName    string   `json:"lastName" validate:"required,max=200"`
	Email       string   `json:"email" validate:"required,max=320"`
	Phone       FreeText `json:"phone"`
	SeminarDate FreeText `json:"seminarDate"`
	Timeline    FreeText `json:"timeline"`
	Timestamp   FreeText `json:"timestamp"`
}

// FreeText accepts any JSON value. Strings are kept as is, null is empty and anything
// else (numbers, booleans) is kept as its JSON text.
type FreeText string

func (t *FreeText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = FreeText(s)
		return nil
	}
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		*t = ""
		return nil
	}
	*t = FreeText(raw)
	return nil
}

const (
	StatusSuccess = "success"
	StatusError   = "error"

	MessageRegistered        = "Registration received"
	MessageAlreadyRegistered = "Already registered"
)

// RegisterOutput is returned with HTTP 200 for both outcomes; callers look at Status.
type RegisterOutput struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func ErrorOutput(msg string) *RegisterOutput {
	return &RegisterOutput{Status: StatusError, Message: msg}
}
