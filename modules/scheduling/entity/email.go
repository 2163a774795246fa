package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EmailPerson struct {
	Address string `json:"address,omitempty"`
	Name    string `json:"name,omitempty"`
}

// DisplayNameOrAddress prefers the display name.
func (p EmailPerson) DisplayNameOrAddress() string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Address
}

func (p EmailPerson) Is(email string) bool {
	return email != "" && strings.EqualFold(strings.TrimSpace(p.Address), strings.TrimSpace(email))
}

// EmailMessage carries the fields of an inbound email the scheduler uses.
type EmailMessage struct {
	ThreadID        string        `json:"thread_id,omitempty"`
	ProviderEmailID string        `json:"provider_email_id,omitempty"`
	MessageID       string        `json:"message_id,omitempty"`
	From            EmailPerson   `json:"from"`
	To              []EmailPerson `json:"to"`
	Cc              []EmailPerson `json:"cc"`
	Bcc             []EmailPerson `json:"bcc"`
	Subject         string        `json:"subject"`
	Content         string        `json:"content,omitempty"`
	FullBody        string        `json:"full_body,omitempty"`
	SentAt          time.Time     `json:"sent_at"`
}

// Body returns the full body, falling back to the short content.
func (m EmailMessage) Body() string {
	if m.FullBody != "" {
		return m.FullBody
	}
	return m.Content
}

// CacheKey identifies the message for memoising extraction results.
func (m EmailMessage) CacheKey() string {
	switch {
	case m.MessageID != "":
		return m.MessageID
	case m.ProviderEmailID != "":
		return m.ProviderEmailID
	default:
		return ""
	}
}

// ExtractionInput is what the extraction collaborator receives.
type ExtractionInput struct {
	MessageKey                 string
	Subject                    string
	FullBody                   string
	SenderDisplayNameOrAddress string
	CurrentDate                time.Time
}

func NewExtractionInput(m EmailMessage, now time.Time) ExtractionInput {
	return ExtractionInput{
		MessageKey:                 m.CacheKey(),
		Subject:                    m.Subject,
		FullBody:                   m.Body(),
		SenderDisplayNameOrAddress: m.From.DisplayNameOrAddress(),
		CurrentDate:                now,
	}
}

// DraftEmailMessage is a reply proposing slots, stored for the user to send.
type DraftEmailMessage struct {
	ID        uuid.UUID     `json:"id"`
	UserEmail string        `json:"user_email"`
	ThreadID  string        `json:"thread_id,omitempty"`
	To        []EmailPerson `json:"to"`
	Cc        []EmailPerson `json:"cc"`
	Bcc       []EmailPerson `json:"bcc"`
	Subject   string        `json:"subject"`
	DraftBody string        `json:"draft_body"`
	CreatedAt time.Time     `json:"created_at"`
}
