package domain_test

import (
	"testing"

	"github.com/fidelize/notifyd/internal/domain"
)

func TestDeliveryResult_IsRetryable(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{domain.CodeRateLimited, true},
		{domain.CodeTimeout, true},
		{domain.CodeServiceUnavailable, true},
		{domain.CodeTemporaryFailure, true},
		{domain.CodeInvalidRecipient, false},
		{domain.CodeUserNotFound, false},
		{domain.CodeAllFailed, false},
		{domain.CodeException, false},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			r := domain.DeliveryFailed(domain.ChannelEmail, tc.code, "boom")
			if r.IsRetryable() != tc.want {
				t.Fatalf("IsRetryable(%s) = %v, want %v", tc.code, r.IsRetryable(), tc.want)
			}
		})
	}
}

func TestDeliveryResult_SuccessNeverRetryable(t *testing.T) {
	r := domain.Delivered(domain.ChannelEmail, "ext-1", nil)
	if r.IsRetryable() {
		t.Fatal("a successful result must not be retryable")
	}
}

func TestDispatchResult_Counts(t *testing.T) {
	msg := domain.Message{RecipientID: "u1", Type: "welcome", Title: "t"}
	dr := domain.NewDispatchResult(msg, map[string]domain.DeliveryResult{
		domain.ChannelInApp: domain.Delivered(domain.ChannelInApp, "n-1", nil),
		domain.ChannelPush:  domain.DeliveryFailed(domain.ChannelPush, domain.CodeAllFailed, "all devices failed"),
	})

	if dr.SuccessCount != 1 || dr.FailureCount != 1 {
		t.Fatalf("unexpected counts: success=%d failure=%d", dr.SuccessCount, dr.FailureCount)
	}
	if !dr.HasAnySuccess() || dr.HasAllFailed() || dr.WasFullySuccessful() || dr.HadNoChannels() {
		t.Fatal("unexpected derived flags for mixed result")
	}
}

// Zero attempted channels and "attempted but all failed" are distinct
// outcomes and must not be conflated by callers.
func TestDispatchResult_NoChannelsVsAllFailed(t *testing.T) {
	msg := domain.Message{RecipientID: "u1", Type: "welcome", Title: "t"}

	empty := domain.NoChannelsAvailable(msg)
	if !empty.HadNoChannels() {
		t.Fatal("expected HadNoChannels=true for zero attempts")
	}
	if empty.HasAllFailed() {
		t.Fatal("zero attempts must not read as all-failed")
	}
	if empty.HasAnySuccess() || empty.WasFullySuccessful() {
		t.Fatal("zero attempts must not read as success")
	}

	failed := domain.NewDispatchResult(msg, map[string]domain.DeliveryResult{
		domain.ChannelEmail: domain.DeliveryFailed(domain.ChannelEmail, domain.CodeTimeout, "smtp timeout"),
	})
	if failed.HadNoChannels() {
		t.Fatal("one attempt must not read as no-channels")
	}
	if !failed.HasAllFailed() {
		t.Fatal("expected HasAllFailed=true")
	}
}

func TestDispatchResult_FullySuccessful(t *testing.T) {
	msg := domain.Message{RecipientID: "u1", Type: "welcome", Title: "t"}
	dr := domain.NewDispatchResult(msg, map[string]domain.DeliveryResult{
		domain.ChannelInApp: domain.Delivered(domain.ChannelInApp, "n-1", nil),
	})
	if !dr.WasFullySuccessful() {
		t.Fatal("expected WasFullySuccessful=true")
	}
}
