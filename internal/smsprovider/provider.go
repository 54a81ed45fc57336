package smsprovider

import (
	"context"
	"regexp"
	"strings"
)

// Result is the provider-agnostic outcome of one SMS send. ErrorCode uses
// the normalized code set from internal/domain; each provider maps its own
// numeric/string statuses into that set before returning.
type Result struct {
	Success      bool
	MessageID    string
	ErrorCode    string
	ErrorMessage string
	Metadata     map[string]any
}

func ok(messageID string, metadata map[string]any) Result {
	return Result{Success: true, MessageID: messageID, Metadata: metadata}
}

func failure(code, message string) Result {
	return Result{ErrorCode: code, ErrorMessage: message}
}

// Provider is the pluggable SMS sending strategy behind the SMS channel.
type Provider interface {
	Name() string
	// IsAvailable reports whether the provider has the credentials it needs.
	IsAvailable() bool
	Send(ctx context.Context, toPhone, body string) Result
}

var e164Re = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// ValidE164 reports whether phone is in E.164 international format.
func ValidE164(phone string) bool {
	return e164Re.MatchString(phone)
}

// MaskPhone hides the middle digits of a phone number for logging.
// "+33612345678" becomes "+336******78".
func MaskPhone(phone string) string {
	if len(phone) <= 6 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:4] + strings.Repeat("*", len(phone)-6) + phone[len(phone)-2:]
}
