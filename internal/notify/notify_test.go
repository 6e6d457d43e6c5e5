package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/apiserver/internal/services"
)

type recordingSender struct {
	to      []string
	subject string
	body    string
	err     error
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.subject = subject
	s.body = body
	return nil
}

func strPtr(s string) *string { return &s }

func TestFormatBody(t *testing.T) {
	notifier := NewNotifier(nil, 5*time.Minute)

	body := notifier.FormatBody([]services.TaskDigestEntry{
		{Title: "buy milk"},
		{Title: "write report", Description: strPtr("quarterly numbers")},
	})

	assert.Equal(t,
		"New tasks created in the last 5 minutes:\n\n- buy milk\n- write report: quarterly numbers",
		body)
}

func TestFormatBodySingularWindow(t *testing.T) {
	notifier := NewNotifier(nil, time.Minute)
	body := notifier.FormatBody([]services.TaskDigestEntry{{Title: "t"}})
	assert.Contains(t, body, "in the last 1 minute:")
}

func TestSendDigestDeliversOnePerGroup(t *testing.T) {
	sender := &recordingSender{}
	notifier := NewNotifier(sender, 5*time.Minute)

	notifier.SendDigest(context.Background(), services.DigestGroup{
		Recipient: "a@x",
		Tasks:     []services.TaskDigestEntry{{Title: "one"}, {Title: "two"}},
	})

	require.Len(t, sender.to, 1)
	assert.Equal(t, "a@x", sender.to[0])
	assert.Equal(t, "New Task Alert", sender.subject)
	assert.Contains(t, sender.body, "- one\n- two")
}

func TestSendDigestSkipsEmptyGroup(t *testing.T) {
	sender := &recordingSender{}
	notifier := NewNotifier(sender, 5*time.Minute)

	notifier.SendDigest(context.Background(), services.DigestGroup{Recipient: "a@x"})
	assert.Empty(t, sender.to)
}

// Delivery failures are swallowed; the digest job must keep going.
func TestSendDigestSwallowsDeliveryError(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	notifier := NewNotifier(sender, 5*time.Minute)

	notifier.SendDigest(context.Background(), services.DigestGroup{
		Recipient: "a@x",
		Tasks:     []services.TaskDigestEntry{{Title: "one"}},
	})
}

func TestSendDigestWithoutSenderLogsOnly(t *testing.T) {
	notifier := NewNotifier(nil, 5*time.Minute)

	notifier.SendDigest(context.Background(), services.DigestGroup{
		Recipient: "a@x",
		Tasks:     []services.TaskDigestEntry{{Title: "one"}},
	})
}
