package entity

type EmailKind string

const (
	EmailConfirmation EmailKind = "confirmation"
	EmailNotification EmailKind = "notification"
)

// Email is a fully rendered outbound message. Exactly one of HTMLBody and TextBody is usually set.
type Email struct {
	Kind     EmailKind `json:"kind"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	HTMLBody string    `json:"html_body,omitempty"`
	TextBody string    `json:"text_body,omitempty"`
}
