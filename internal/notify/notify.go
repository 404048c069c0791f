// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

// Package notify defines the typed notifications emitted by import runs and
// the Sender interface delivering them. Delivery itself is an external
// concern; this package ships a structured-log sender for standalone
// deployments and a webhook sender for integrations.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/archivus/internal/logging"
)

// Type identifies a notification.
type Type string

const (
	TypeImportInProgress      Type = "import_in_progress"
	TypeImportComplete        Type = "import_complete"
	TypeImportInvalidFile     Type = "import_unsuccessful_invalid_file"
	TypeImportVersionMismatch Type = "import_unsuccessful_version_mismatch"
	TypeImportGenericError    Type = "import_unsuccessful_generic_error"
)

// Action is the single primary action attached to a notification.
type Action string

const (
	ActionOpenApp      Action = "open_app"
	ActionChooseFile   Action = "choose_file"
	ActionUpdateSystem Action = "update_system"
	ActionRetry        Action = "retry"
)

// Notification is one typed event with its primary action.
type Notification struct {
	Type   Type      `json:"type"`
	Action Action    `json:"action"`
	SentAt time.Time `json:"sent_at"`
}

// New builds a notification of the given type with its canonical primary
// action.
func New(t Type) Notification {
	return Notification{Type: t, Action: primaryAction(t), SentAt: time.Now().UTC()}
}

// primaryAction maps each notification type to its one primary action.
func primaryAction(t Type) Action {
	switch t {
	case TypeImportInProgress, TypeImportComplete:
		return ActionOpenApp
	case TypeImportInvalidFile:
		return ActionChooseFile
	case TypeImportVersionMismatch:
		return ActionUpdateSystem
	case TypeImportGenericError:
		return ActionRetry
	default:
		return ActionOpenApp
	}
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the structured log. Used when no
// external delivery channel is configured.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, n Notification) error {
	logging.Info().
		Str("notification", string(n.Type)).
		Str("action", string(n.Action)).
		Msg("Notification sent")
	return nil
}

// WebhookSender POSTs notifications as JSON to a configured URL.
type WebhookSender struct {
	URL    string
	Client *http.Client
}

// NewWebhookSender creates a webhook sender with a bounded request timeout.
func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send implements Sender.
func (w *WebhookSender) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
