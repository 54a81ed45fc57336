package domain

// Channel identifiers. These are stable string keys: they appear in
// preference records, delivery rows, metrics labels, and queue envelopes.
const (
	ChannelInApp = "in_app"
	ChannelPush  = "push"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

func KnownChannel(id string) bool {
	switch id {
	case ChannelInApp, ChannelPush, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// Error codes surfaced in DeliveryResult.ErrorCode. Channels classify their
// own failures into this set; the dispatcher only ever produces
// CodeException, CodeChannelNotFound, and CodeUnsupported.
const (
	CodeUserNotFound        = "user_not_found"
	CodeDatabaseError       = "database_error"
	CodeRateLimited         = "rate_limited"
	CodeTimeout             = "timeout"
	CodeServiceUnavailable  = "service_unavailable"
	CodeTemporaryFailure    = "temporary_failure"
	CodeInvalidRecipient    = "invalid_recipient"
	CodeUnknownError        = "unknown_error"
	CodeNoDevices           = "no_devices"
	CodeAllFailed           = "all_failed"
	CodeChannelDisabled     = "channel_disabled"
	CodeNoProvider          = "no_provider"
	CodeMissingPhone        = "missing_phone"
	CodeInvalidPhone        = "invalid_phone"
	CodeInvalidPhoneNumber  = "invalid_phone_number"
	CodeInsufficientBalance = "insufficient_balance"
	CodeException           = "exception"
	CodeChannelNotFound     = "channel_not_found"
	CodeUnsupported         = "unsupported"
)

// retryableCodes are the failure classes eligible for external retry
// scheduling. Everything else is terminal for that channel/message pair.
var retryableCodes = map[string]struct{}{
	CodeRateLimited:        {},
	CodeTimeout:            {},
	CodeServiceUnavailable: {},
	CodeTemporaryFailure:   {},
}

// DeliveryResult is the outcome of a single channel's delivery attempt.
type DeliveryResult struct {
	Success      bool           `json:"success"`
	Channel      string         `json:"channel"`
	ExternalID   string         `json:"external_id,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Delivered builds a successful result. metadata may be nil.
func Delivered(channel, externalID string, metadata map[string]any) DeliveryResult {
	return DeliveryResult{
		Success:    true,
		Channel:    channel,
		ExternalID: externalID,
		Metadata:   metadata,
	}
}

// DeliveryFailed builds a failed result with a classified error code.
func DeliveryFailed(channel, errorCode, errorMessage string) DeliveryResult {
	return DeliveryResult{
		Channel:      channel,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
	}
}

// DeliveryFailedMeta is DeliveryFailed plus attached metadata.
func DeliveryFailedMeta(channel, errorCode, errorMessage string, metadata map[string]any) DeliveryResult {
	r := DeliveryFailed(channel, errorCode, errorMessage)
	r.Metadata = metadata
	return r
}

// IsRetryable reports whether this failure is transient and eligible for
// external retry scheduling. Always false for successes.
func (r DeliveryResult) IsRetryable() bool {
	if r.Success {
		return false
	}
	_, ok := retryableCodes[r.ErrorCode]
	return ok
}

// DispatchResult aggregates per-channel outcomes for one dispatch call.
type DispatchResult struct {
	Message        Message                   `json:"message"`
	ChannelResults map[string]DeliveryResult `json:"channel_results"`
	SuccessCount   int                       `json:"success_count"`
	FailureCount   int                       `json:"failure_count"`
}

// NewDispatchResult builds the aggregate from the per-channel results.
func NewDispatchResult(msg Message, results map[string]DeliveryResult) DispatchResult {
	dr := DispatchResult{
		Message:        msg,
		ChannelResults: results,
	}
	for _, r := range results {
		if r.Success {
			dr.SuccessCount++
		} else {
			dr.FailureCount++
		}
	}
	return dr
}

// NoChannelsAvailable is the zero-attempt result: no channel was eligible
// for this message. Distinct from "attempted and all failed".
func NoChannelsAvailable(msg Message) DispatchResult {
	return DispatchResult{
		Message:        msg,
		ChannelResults: map[string]DeliveryResult{},
	}
}

func (d DispatchResult) HasAnySuccess() bool { return d.SuccessCount > 0 }

func (d DispatchResult) HasAllFailed() bool {
	return d.FailureCount > 0 && d.SuccessCount == 0
}

func (d DispatchResult) WasFullySuccessful() bool {
	return d.FailureCount == 0 && d.SuccessCount > 0
}

func (d DispatchResult) HadNoChannels() bool {
	return len(d.ChannelResults) == 0
}
