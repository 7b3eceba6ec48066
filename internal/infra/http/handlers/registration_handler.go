package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/landingkit/seminar-signups/internal/usecase"
)

const maxBodyBytes = 64 << 10

const (
	messageInvalidJSON = "Invalid JSON"
	messageUnavailable = "Registration could not be saved. Please try again later."
)

type Registrar interface {
	Execute(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error)
}

type RejectionRecorder interface {
	RecordRegistration(outcome string)
}

// RegistrationHandler receives landing-page submissions. Every response is HTTP 200; the
// outcome is in the JSON status field, because the page posts in no-cors mode and never reads it.
type RegistrationHandler struct {
	registrar Registrar
	metrics   RejectionRecorder
	logger    *zap.Logger
}

func NewRegistrationHandler(registrar Registrar, metrics RejectionRecorder, logger *zap.Logger) *RegistrationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationHandler{registrar: registrar, metrics: metrics, logger: logger}
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	// no-cors posts arrive as text/plain, so the Content-Type header is not checked
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input usecase.RegisterInput
	if err := decodeBody(r.Body, &input); err != nil {
		h.logger.Warn("invalid registration body", zap.Error(err))
		if h.metrics != nil {
			h.metrics.RecordRegistration(usecase.OutcomeRejected)
		}
		writeJSON(w, usecase.ErrorOutput(messageInvalidJSON))
		return
	}

	output, err := h.registrar.Execute(r.Context(), input)
	if err != nil {
		writeJSON(w, usecase.ErrorOutput(h.errorMessage(err)))
		return
	}

	writeJSON(w, output)
}

func (h *RegistrationHandler) errorMessage(err error) string {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		h.logger.Info("registration rejected", zap.String("code", de.Code), zap.String("reason", de.Message))
		return de.Message
	}
	h.logger.Error("registration failed", zap.Error(err))
	return messageUnavailable
}

// decodeBody requires exactly one JSON value; trailing data makes the body malformed.
func decodeBody(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}
