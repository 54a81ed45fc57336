package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FCMSender delivers pushes through Firebase Cloud Messaging.
// The base URL is injected from config so tests can point to a local mock.
type FCMSender struct {
	baseURL    string
	serverKey  string
	httpClient *http.Client
}

func NewFCMSender(baseURL, serverKey string, timeout time.Duration) *FCMSender {
	return &FCMSender{
		baseURL:   baseURL,
		serverKey: serverKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	To           string          `json:"to"`
	Priority     string          `json:"priority"`
	TimeToLive   int             `json:"time_to_live,omitempty"`
	Notification fcmNotification `json:"notification"`
	Data         map[string]any  `json:"data,omitempty"`
}

type fcmResult struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

type fcmResponse struct {
	Success int         `json:"success"`
	Failure int         `json:"failure"`
	Results []fcmResult `json:"results"`
}

// Send posts one downstream message. High-priority notes are sent with
// priority=high and a 24h TTL so providers wake the device immediately
// (FCM translates this to apns-priority 10 for iOS targets).
func (s *FCMSender) Send(ctx context.Context, note Note) (*Response, error) {
	payload := fcmRequest{
		To:       note.Token,
		Priority: "normal",
		Notification: fcmNotification{
			Title: note.Title,
			Body:  note.Body,
		},
		Data: note.Data,
	}
	if note.HighPriority {
		payload.Priority = "high"
		payload.TimeToLive = int((24 * time.Hour).Seconds())
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected provider status: %d", resp.StatusCode)
	}

	var fcmResp fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&fcmResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(fcmResp.Results) == 0 {
		return nil, fmt.Errorf("provider returned no results")
	}

	result := fcmResp.Results[0]
	switch result.Error {
	case "":
		return &Response{MessageID: result.MessageID}, nil
	case "NotRegistered", "InvalidRegistration", "MismatchSenderId":
		return nil, ErrUnregistered
	default:
		return nil, fmt.Errorf("provider error: %s", result.Error)
	}
}

var _ Sender = (*FCMSender)(nil)
