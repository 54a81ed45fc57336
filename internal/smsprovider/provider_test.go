package smsprovider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/smsprovider"
)

func TestValidE164(t *testing.T) {
	valid := []string{"+33612345678", "+14155550123", "+861391234567"}
	for _, p := range valid {
		if !smsprovider.ValidE164(p) {
			t.Fatalf("expected %q to be valid E.164", p)
		}
	}

	invalid := []string{"", "0612345678", "+0123", "+33 6 12 34 56 78", "33612345678"}
	for _, p := range invalid {
		if smsprovider.ValidE164(p) {
			t.Fatalf("expected %q to be rejected", p)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+33612345678", "+336******78"},
		{"+14155550123", "+141******23"},
		{"+1234", "*****"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := smsprovider.MaskPhone(tc.in); got != tc.want {
			t.Fatalf("MaskPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTwilioProvider_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("To"); got != "+33612345678" {
			t.Fatalf("unexpected To: %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "SM123", "status": "queued"})
	}))
	defer srv.Close()

	p := smsprovider.NewTwilioProvider(srv.URL, "AC1", "secret", "+33700000000", time.Second)
	res := p.Send(context.Background(), "+33612345678", "hello")

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.MessageID != "SM123" {
		t.Fatalf("expected message id SM123, got %q", res.MessageID)
	}
}

func TestTwilioProvider_Send_InvalidNumberCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 21211, "message": "invalid 'To' number"})
	}))
	defer srv.Close()

	p := smsprovider.NewTwilioProvider(srv.URL, "AC1", "secret", "+33700000000", time.Second)
	res := p.Send(context.Background(), "+99912345678", "hello")

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ErrorCode != domain.CodeInvalidPhoneNumber {
		t.Fatalf("expected %s, got %s", domain.CodeInvalidPhoneNumber, res.ErrorCode)
	}
}

func TestTwilioProvider_Send_RejectsNonE164BeforeCalling(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p := smsprovider.NewTwilioProvider(srv.URL, "AC1", "secret", "+33700000000", time.Second)
	res := p.Send(context.Background(), "0612345678", "hello")

	if called {
		t.Fatal("provider must not be called for a non-E.164 number")
	}
	if res.ErrorCode != domain.CodeInvalidPhone {
		t.Fatalf("expected %s, got %s", domain.CodeInvalidPhone, res.ErrorCode)
	}
}

func TestVonageProvider_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"status": "0", "message-id": "vn-1"}},
		})
	}))
	defer srv.Close()

	p := smsprovider.NewVonageProvider(srv.URL, "key", "secret", "NOTIFYD", time.Second)
	res := p.Send(context.Background(), "+33612345678", "hello")

	if !res.Success || res.MessageID != "vn-1" {
		t.Fatalf("expected success with id vn-1, got %+v", res)
	}
}

func TestVonageProvider_Send_StatusMapping(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"1", domain.CodeRateLimited},
		{"3", domain.CodeInvalidPhoneNumber},
		{"5", domain.CodeTemporaryFailure},
		{"9", domain.CodeInsufficientBalance},
		{"42", domain.CodeUnknownError},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"messages": []map[string]string{{"status": tc.status, "error-text": "nope"}},
				})
			}))
			defer srv.Close()

			p := smsprovider.NewVonageProvider(srv.URL, "key", "secret", "NOTIFYD", time.Second)
			res := p.Send(context.Background(), "+33612345678", "hello")

			if res.Success {
				t.Fatal("expected failure")
			}
			if res.ErrorCode != tc.want {
				t.Fatalf("status %s: expected %s, got %s", tc.status, tc.want, res.ErrorCode)
			}
		})
	}
}

func TestVonageProvider_IsAvailable(t *testing.T) {
	if smsprovider.NewVonageProvider("http://x", "", "", "F", time.Second).IsAvailable() {
		t.Fatal("provider without credentials must not be available")
	}
	if !smsprovider.NewVonageProvider("http://x", "k", "s", "F", time.Second).IsAvailable() {
		t.Fatal("provider with credentials should be available")
	}
}
