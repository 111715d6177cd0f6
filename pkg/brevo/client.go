package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nurserysera/storefront-backend/pkg/config"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
)

const sendPath = "/v3/smtp/email"

// maxErrorBody caps how much of a provider error response is kept.
const maxErrorBody = 512

var errAPIKeyRequired = errors.New("brevo api key is required")

// Message is one transactional email.
type Message struct {
	ToEmail     string
	ToName      string
	Subject     string
	HTMLContent string
}

// Client wraps the Brevo transactional-email HTTP API. The provider is treated
// as a black box: send a payload, get back a message id or an error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	fromName   string
	logger     *logger.Logger
}

// NewClient validates the credentials and builds the mail client.
func NewClient(cfg config.MailConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.brevo.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       cfg.From,
		fromName:   cfg.FromName,
		logger:     logg,
	}, nil
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

type party struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

// Send delivers one message and returns the provider message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "recipient email required")
	}

	payload := sendRequest{
		Sender:      party{Email: c.from, Name: c.fromName},
		To:          []party{{Email: msg.ToEmail, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLContent,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode mail payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build mail request")
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mail provider unreachable")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mail provider rejected message")
	}

	var decoded sendResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode provider response")
	}

	if c.logger != nil {
		ctx = c.logger.WithFields(ctx, map[string]any{
			"provider_message_id": decoded.MessageID,
			"subject":             msg.Subject,
		})
		c.logger.Info(ctx, "mail sent")
	}
	return decoded.MessageID, nil
}
