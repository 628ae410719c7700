package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

var ErrHTTPEndpointRequired = errors.New("sms: http endpoint is required")

type HTTPConfig struct {
	Endpoint string
	APIKey   string
	Sender   string
	Timeout  time.Duration
	// Client overrides the default client, mainly for tests.
	Client *http.Client
}

// HTTP posts JSON to a provider endpoint and expects {"message_id": "..."} back.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

type httpSendRequest struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	Text      string `json:"text"`
	Reference string `json:"reference,omitempty"`
}

type httpSendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.Endpoint == "" {
		return nil, &Error{Kind: KindConfig, Cause: ErrHTTPEndpointRequired}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTP{cfg: cfg, client: client}, nil
}

func (h *HTTP) Send(ctx context.Context, msg Message) (Receipt, error) {
	if msg.To == "" || msg.Body == "" {
		return Receipt{}, &Error{Kind: KindValidation, Message: "recipient and body are required"}
	}

	payload, err := json.Marshal(httpSendRequest{
		From:      h.cfg.Sender,
		To:        msg.To,
		Text:      msg.Body,
		Reference: msg.Reference,
	})
	if err != nil {
		return Receipt{}, &Error{Kind: KindValidation, Message: "encode payload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, &Error{Kind: KindConfig, Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Receipt{}, &Error{Kind: KindNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body httpSendResponse
	_ = json.Unmarshal(raw, &body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Receipt{}, &Error{Kind: KindRateLimit, StatusCode: resp.StatusCode, Message: "rate limit exceeded"}
	case resp.StatusCode >= http.StatusInternalServerError:
		return Receipt{}, &Error{Kind: KindProvider, StatusCode: resp.StatusCode, Message: providerMessage(body, raw)}
	case resp.StatusCode >= http.StatusBadRequest:
		return Receipt{}, &Error{Kind: KindRejected, StatusCode: resp.StatusCode, Message: providerMessage(body, raw)}
	}

	return Receipt{
		ProviderMessageID: body.MessageID,
		StatusCode:        resp.StatusCode,
		AcceptedAt:        time.Now().UTC(),
	}, nil
}

func providerMessage(body httpSendResponse, raw []byte) string {
	if body.Error != "" {
		return body.Error
	}
	return string(raw)
}
