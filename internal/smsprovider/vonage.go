package smsprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fidelize/notifyd/internal/domain"
)

// VonageProvider sends SMS through the Vonage SMS API.
type VonageProvider struct {
	apiKey     string
	apiSecret  string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewVonageProvider(baseURL, apiKey, apiSecret, from string, timeout time.Duration) *VonageProvider {
	return &VonageProvider{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		from:      from,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *VonageProvider) Name() string { return "vonage" }

func (p *VonageProvider) IsAvailable() bool {
	return p.apiKey != "" && p.apiSecret != ""
}

type vonageRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
}

type vonageMessage struct {
	Status    string `json:"status"`
	MessageID string `json:"message-id"`
	ErrorText string `json:"error-text"`
}

type vonageResponse struct {
	Messages []vonageMessage `json:"messages"`
}

func (p *VonageProvider) Send(ctx context.Context, toPhone, body string) Result {
	if !ValidE164(toPhone) {
		return failure(domain.CodeInvalidPhone, "phone number is not E.164")
	}

	payload, err := json.Marshal(vonageRequest{
		APIKey:    p.apiKey,
		APISecret: p.apiSecret,
		From:      p.from,
		To:        toPhone,
		Text:      body,
	})
	if err != nil {
		return failure(domain.CodeUnknownError, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/sms/json", bytes.NewReader(payload))
	if err != nil {
		return failure(domain.CodeUnknownError, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(domain.CodeServiceUnavailable, fmt.Sprintf("unexpected provider status: %d", resp.StatusCode))
	}

	var vr vonageResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return failure(domain.CodeUnknownError, fmt.Sprintf("decode response: %v", err))
	}
	if len(vr.Messages) == 0 {
		return failure(domain.CodeUnknownError, "provider returned no messages")
	}

	msg := vr.Messages[0]
	if msg.Status == "0" {
		return ok(msg.MessageID, nil)
	}
	return failure(mapVonageStatus(msg.Status), msg.ErrorText)
}

// mapVonageStatus normalizes Vonage's per-message status codes.
func mapVonageStatus(status string) string {
	switch status {
	case "1": // throttled
		return domain.CodeRateLimited
	case "3": // invalid params (covers malformed numbers)
		return domain.CodeInvalidPhoneNumber
	case "5": // internal error, retry later
		return domain.CodeTemporaryFailure
	case "9": // quota exceeded
		return domain.CodeInsufficientBalance
	}
	return domain.CodeUnknownError
}

var _ Provider = (*VonageProvider)(nil)
