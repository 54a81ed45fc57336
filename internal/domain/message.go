package domain

// DefaultLocale is applied to messages built without an explicit locale.
const DefaultLocale = "fr"

// HighPriorityThreshold is the priority at or above which a message is
// treated as high priority (affects push delivery hints and queue tier).
const HighPriorityThreshold = 8

// Recipient exposes the identity fields needed to address a message.
// Satisfied by *User; callers outside this module can pass their own type.
type Recipient interface {
	GetUserID() string
	GetUserEmail() string
}

// Message is an immutable description of one notification to deliver.
// Derived variants are produced by the With* methods, which copy; a Message
// is never mutated after construction.
type Message struct {
	RecipientID    string         `json:"recipient_id"`
	RecipientEmail string         `json:"recipient_email,omitempty"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Data           map[string]any `json:"data,omitempty"`
	ActionURL      string         `json:"action_url,omitempty"`
	ActionLabel    string         `json:"action_label,omitempty"`
	Priority       int            `json:"priority"`

	// Channels is an explicit channel override. nil means "use the
	// recipient's preference defaults".
	Channels []string `json:"channels,omitempty"`

	Locale string `json:"locale"`
}

// ForRecipient builds a message addressed to r with normal priority and the
// default locale. Optional fields are layered on with the With* methods.
func ForRecipient(r Recipient, notifType, title, body string) Message {
	return Message{
		RecipientID:    r.GetUserID(),
		RecipientEmail: r.GetUserEmail(),
		Type:           notifType,
		Title:          title,
		Body:           body,
		Priority:       5,
		Locale:         DefaultLocale,
	}
}

// IsHighPriority reports whether the message should be delivered with
// high-priority transport hints.
func (m Message) IsHighPriority() bool {
	return m.Priority >= HighPriorityThreshold
}

// WithData returns a copy with extra entries merged into Data.
// Existing keys are overwritten by the new values; the receiver's map is
// left untouched.
func (m Message) WithData(extra map[string]any) Message {
	merged := make(map[string]any, len(m.Data)+len(extra))
	for k, v := range m.Data {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	m.Data = merged
	return m
}

// WithAction returns a copy carrying a call-to-action link.
func (m Message) WithAction(url, label string) Message {
	m.ActionURL = url
	m.ActionLabel = label
	return m
}

// WithPriority returns a copy with the given priority (clamped to 0–10).
func (m Message) WithPriority(p int) Message {
	if p < 0 {
		p = 0
	}
	if p > 10 {
		p = 10
	}
	m.Priority = p
	return m
}

// WithChannels returns a copy restricted to an explicit channel list,
// bypassing preference defaults (preference filtering still applies).
func (m Message) WithChannels(channels ...string) Message {
	m.Channels = append([]string(nil), channels...)
	return m
}

// WithLocale returns a copy with the given locale.
func (m Message) WithLocale(locale string) Message {
	m.Locale = locale
	return m
}

// DataString returns the string value stored under key, or "" when absent
// or of another type.
func (m Message) DataString(key string) string {
	s, _ := m.Data[key].(string)
	return s
}

func (m Message) Validate() error {
	if m.RecipientID == "" {
		return ErrInvalidRecipient
	}
	if m.Type == "" {
		return ErrInvalidType
	}
	if m.Title == "" {
		return ErrInvalidTitle
	}
	if m.Priority < 0 || m.Priority > 10 {
		return ErrInvalidPriority
	}
	for _, ch := range m.Channels {
		if !KnownChannel(ch) {
			return ErrInvalidChannel
		}
	}
	return nil
}
