package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Sender delivers out-of-band notifications (confirmation codes). The
// delivery mechanism stays abstract so tests can capture what was sent.
type Sender interface {
	Send(recipient, subject, body string) error
}

// WebhookSender posts notifications as JSON to a mail-gateway webhook.
type WebhookSender struct {
	URL    string
	From   string
	Client *http.Client
}

type mailWebhookRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func NewWebhookSender(url, from string) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		From:   from,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSender) Send(recipient, subject, body string) error {
	payload, err := json.Marshal(mailWebhookRequest{
		From:    s.From,
		To:      recipient,
		Subject: subject,
		Body:    body,
	})

	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	resp, err := s.Client.Post(s.URL, "application/json", bytes.NewBuffer(payload))

	if err != nil {
		return fmt.Errorf("failed to send mail webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// LogSender writes notifications to the process log. Used when no mail
// gateway is configured, which keeps local development working.
type LogSender struct{}

func (LogSender) Send(recipient, subject, body string) error {
	log.Printf("mail to %s: %s: %s", recipient, subject, body)
	return nil
}

// SenderFromEnv picks the webhook sender when MAIL_WEBHOOK_URL is set and
// falls back to logging otherwise.
func SenderFromEnv() Sender {
	if url := os.Getenv("MAIL_WEBHOOK_URL"); url != "" {
		return NewWebhookSender(url, os.Getenv("MAIL_FROM"))
	}

	log.Println("MAIL_WEBHOOK_URL not set, confirmation codes will be logged")
	return LogSender{}
}
