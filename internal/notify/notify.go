package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskdeck/apiserver/internal/services"
)

const digestSubject = "New Task Alert"

// Sender delivers a composed plaintext message to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier turns digest groups into emails. With no sender configured it
// writes the digest to the log instead. Delivery failures are logged together
// with the plaintext body and never propagate to the caller.
type Notifier struct {
	sender Sender
	window time.Duration
}

// NewNotifier constructs a Notifier. A nil sender selects the log-only mode.
func NewNotifier(sender Sender, window time.Duration) *Notifier {
	return &Notifier{sender: sender, window: window}
}

// SendDigest delivers one digest group. It never returns an error.
func (n *Notifier) SendDigest(ctx context.Context, group services.DigestGroup) {
	if len(group.Tasks) == 0 {
		return
	}

	body := n.FormatBody(group.Tasks)

	if n.sender == nil {
		slog.Info("no email credentials configured, logging digest instead",
			"recipient", group.Recipient,
			"body", body)
		return
	}

	if err := n.sender.Send(ctx, group.Recipient, digestSubject, body); err != nil {
		slog.Error("failed to send digest email, falling back to log",
			"recipient", group.Recipient,
			"error", err,
			"body", body)
		return
	}

	slog.Info("digest email sent", "recipient", group.Recipient, "tasks", len(group.Tasks))
}

// FormatBody renders the digest body, one line per task.
func (n *Notifier) FormatBody(tasks []services.TaskDigestEntry) string {
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		line := "- " + task.Title
		if task.Description != nil && *task.Description != "" {
			line += ": " + *task.Description
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("New tasks created in the last %s:\n\n%s",
		formatWindow(n.window), strings.Join(lines, "\n"))
}

func formatWindow(window time.Duration) string {
	if window >= time.Minute && window%time.Minute == 0 {
		minutes := int(window / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return window.String()
}
