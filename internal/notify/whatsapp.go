package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppClient posts messages to the gateway provider's HTTP API.
type WhatsAppClient struct {
	apiURL string
	token  string
	sender string
	client *http.Client
}

func NewWhatsAppClient(apiURL, token, sender string) *WhatsAppClient {
	return &WhatsAppClient{
		apiURL: apiURL,
		token:  token,
		sender: sender,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the gateway is configured. Unconfigured
// environments silently skip the channel.
func (c *WhatsAppClient) Enabled() bool {
	return c.apiURL != "" && c.token != ""
}

func (c *WhatsAppClient) SendMessage(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(map[string]string{
		"from": c.sender,
		"to":   to,
		"text": body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
