// Package notification emails invoice notifications through templated messages.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"invoicehub/internal/logger"

	"github.com/rs/zerolog"
)

var ErrMissingTemplate = errors.New("notification: template id not configured")

// Recipient is an email address with an optional display name.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender delivers one templated email.
type Sender interface {
	SendTemplatedEmail(ctx context.Context, templateID string, to Recipient, vars map[string]any) error
}

// MailtrapConfig configures the Mailtrap send API client.
type MailtrapConfig struct {
	URL     string
	Token   string
	From    Recipient
	Timeout time.Duration
}

// MailtrapSender sends through the Mailtrap email sending API.
type MailtrapSender struct {
	cfg    MailtrapConfig
	client *http.Client
}

func NewMailtrapSender(cfg MailtrapConfig) *MailtrapSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MailtrapSender{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

type mailtrapRequest struct {
	From              Recipient      `json:"from"`
	To                []Recipient    `json:"to"`
	TemplateUUID      string         `json:"template_uuid"`
	TemplateVariables map[string]any `json:"template_variables"`
}

type mailtrapError struct {
	Errors []string `json:"errors"`
}

func (s *MailtrapSender) SendTemplatedEmail(ctx context.Context, templateID string, to Recipient, vars map[string]any) error {
	if templateID == "" {
		return ErrMissingTemplate
	}
	body, err := json.Marshal(mailtrapRequest{
		From:              s.cfg.From,
		To:                []Recipient{to},
		TemplateUUID:      templateID,
		TemplateVariables: vars,
	})
	if err != nil {
		return fmt.Errorf("encode mailtrap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mailtrap request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailtrap send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr mailtrapError
		if json.Unmarshal(raw, &apiErr) == nil && len(apiErr.Errors) > 0 {
			return fmt.Errorf("mailtrap send: status %d: %v", resp.StatusCode, apiErr.Errors)
		}
		return fmt.Errorf("mailtrap send: status %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender() *LogSender {
	return &LogSender{log: logger.WithComponent("mail")}
}

func (s *LogSender) SendTemplatedEmail(_ context.Context, templateID string, to Recipient, vars map[string]any) error {
	s.log.Info().
		Str("template", templateID).
		Str("to", to.Email).
		Interface("vars", vars).
		Msg("Email not sent (no mail API token configured)")
	return nil
}
