package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskdeck/apiserver/config"
)

// Publisher emits messages to a broker channel. It is the publish-only
// surface the digest job needs; consumers live outside this service.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// DigestEvent is the payload published after a digest group is notified.
type DigestEvent struct {
	Recipient string `json:"recipient"`
	TaskCount int    `json:"task_count"`
	TaskIDs   []int  `json:"task_ids"`
}

// NewPublisher builds the configured broker backend. Backend "none" (or
// empty) returns nil without error, meaning event publishing is disabled.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg)
	case "pubsub":
		return NewPubSubPublisher(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

var errChannelRequired = errors.New("events channel is required")
