package smsprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fidelize/notifyd/internal/domain"
)

// TwilioProvider sends SMS through the Twilio Messages API.
type TwilioProvider struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewTwilioProvider(baseURL, accountSID, authToken, from string, timeout time.Duration) *TwilioProvider {
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) IsAvailable() bool {
	return p.accountSID != "" && p.authToken != "" && p.from != ""
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (p *TwilioProvider) Send(ctx context.Context, toPhone, body string) Result {
	if !ValidE164(toPhone) {
		return failure(domain.CodeInvalidPhone, "phone number is not E.164")
	}

	form := url.Values{}
	form.Set("To", toPhone)
	form.Set("From", p.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return failure(domain.CodeUnknownError, err.Error())
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		var msg twilioMessage
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
			return failure(domain.CodeUnknownError, fmt.Sprintf("decode response: %v", err))
		}
		return ok(msg.SID, map[string]any{"status": msg.Status})
	}

	var apiErr twilioError
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	return failure(mapTwilioError(resp.StatusCode, apiErr.Code), apiErr.Message)
}

// mapTwilioError normalizes Twilio's numeric error codes. The HTTP status
// covers the cases where no structured code was returned.
func mapTwilioError(status, code int) string {
	switch code {
	case 21211, 21614: // invalid / non-mobile 'To' number
		return domain.CodeInvalidPhoneNumber
	case 20429:
		return domain.CodeRateLimited
	case 20003:
		return domain.CodeInsufficientBalance
	}
	switch status {
	case http.StatusTooManyRequests:
		return domain.CodeRateLimited
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return domain.CodeServiceUnavailable
	}
	return domain.CodeUnknownError
}

// transportFailure classifies a failed HTTP round trip.
func transportFailure(err error) Result {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return failure(domain.CodeTimeout, err.Error())
	}
	return failure(domain.CodeServiceUnavailable, err.Error())
}

var _ Provider = (*TwilioProvider)(nil)
