package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ConfirmationMessage = "You're registered! Check your inbox for a confirmation email with the seminar details."
	errorMessageFormat  = "Something went wrong. Please try again or email %s"
)

// Submission holds the six form fields; Timestamp is filled in by Submit.
type Submission struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SeminarDate string `json:"seminarDate"`
	Timeline    string `json:"timeline"`
	Timestamp   string `json:"timestamp"`
}

// Outcome is what the landing page shows. Success only means the request did not fail in
// transport; the response body is never read.
type Outcome struct {
	Success bool
	Message string
	Err     error
}

// Client posts submissions the way the landing page does: fire-and-forget, opaque response.
type Client struct {
	endpoint     string
	fallbackMail string
	httpClient   *http.Client
	now          func() time.Time

	// OnSuccess is called after a successful submit, e.g. to emit an analytics event.
	OnSuccess func(s Submission)
}

func New(endpoint, fallbackMail string) *Client {
	return &Client{
		endpoint:     endpoint,
		fallbackMail: fallbackMail,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		now:          time.Now,
	}
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Submit(ctx context.Context, s Submission) Outcome {
	s.Timestamp = c.now().UTC().Format("2006-01-02T15:04:05.000Z")

	body, err := json.Marshal(s)
	if err != nil {
		return c.failed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.failed(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failed(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if c.OnSuccess != nil {
		c.OnSuccess(s)
	}
	return Outcome{Success: true, Message: ConfirmationMessage}
}

func (c *Client) failed(err error) Outcome {
	return Outcome{
		Success: false,
		Message: fmt.Sprintf(errorMessageFormat, c.fallbackMail),
		Err:     err,
	}
}
