package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-identity/config"
)

const (
	sendGridSendURL = "https://api.sendgrid.com/v3/mail/send"
	resendSendURL   = "https://api.resend.com/emails"

	providerTimeout = 10 * time.Second
)

// Provider delivers a rendered message. Implementations are selected once at
// startup; delivery failures are reported to the caller and never retried
// here.
type Provider interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// NewProvider selects the delivery transport from configuration.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.EmailProvider {
	case config.EmailProviderConsole:
		return NewConsoleProvider(), nil
	case config.EmailProviderSendGrid:
		return NewSendGridProvider(cfg.SendGridAPIKey, cfg.EmailFrom), nil
	case config.EmailProviderResend:
		return NewResendProvider(cfg.ResendAPIKey, cfg.EmailFrom), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

// ConsoleProvider logs messages instead of sending them. Development only.
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) Send(_ context.Context, to, subject, _ string, text string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("=== EMAIL (console mode) ===")
	logrus.Info(text)
	return nil
}

// SendGridProvider posts to the SendGrid v3 mail send API.
type SendGridProvider struct {
	apiKey string
	from   string
	url    string
	client *http.Client
}

func NewSendGridProvider(apiKey, from string) *SendGridProvider {
	return &SendGridProvider{
		apiKey: apiKey,
		from:   from,
		url:    sendGridSendURL,
		client: &http.Client{Timeout: providerTimeout},
	}
}

func (p *SendGridProvider) Send(ctx context.Context, to, subject, html, text string) error {
	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": to}}},
		},
		"from":    map[string]string{"email": p.from},
		"subject": subject,
		"content": []map[string]string{
			{"type": "text/plain", "value": text},
			{"type": "text/html", "value": html},
		},
	}

	return postJSON(ctx, p.client, p.url, "Bearer "+p.apiKey, payload)
}

// ResendProvider posts to the Resend emails API.
type ResendProvider struct {
	apiKey string
	from   string
	url    string
	client *http.Client
}

func NewResendProvider(apiKey, from string) *ResendProvider {
	return &ResendProvider{
		apiKey: apiKey,
		from:   from,
		url:    resendSendURL,
		client: &http.Client{Timeout: providerTimeout},
	}
}

func (p *ResendProvider) Send(ctx context.Context, to, subject, html, text string) error {
	payload := map[string]any{
		"from":    p.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
		"text":    text,
	}

	return postJSON(ctx, p.client, p.url, "Bearer "+p.apiKey, payload)
}

func postJSON(ctx context.Context, client *http.Client, url, authorization string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, detail)
	}

	return nil
}
