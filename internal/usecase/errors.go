package usecase

import "errors"

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func storeError(msg string, err error) error {
	return &TechnicalError{Code: CodeStoreUnavailable, Message: msg, Err: err}
}
