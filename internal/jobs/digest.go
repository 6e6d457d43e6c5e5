package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taskdeck/apiserver/internal/events"
	"github.com/taskdeck/apiserver/internal/notify"
	"github.com/taskdeck/apiserver/internal/services"
)

// DigestJob periodically scans for newly created tasks and emails each owner
// a digest. Runs are serialized: a tick that fires while the previous run is
// still in flight is skipped, since the next tick rescans the same trailing
// window anyway.
type DigestJob struct {
	digests   *services.DigestService
	notifier  *notify.Notifier
	publisher events.Publisher
	channel   string
	interval  time.Duration

	cron    *cron.Cron
	running atomic.Bool
}

// NewDigestJob constructs the job. publisher may be nil to disable digest
// events.
func NewDigestJob(
	digests *services.DigestService,
	notifier *notify.Notifier,
	publisher events.Publisher,
	channel string,
	interval time.Duration,
) *DigestJob {
	return &DigestJob{
		digests:   digests,
		notifier:  notifier,
		publisher: publisher,
		channel:   channel,
		interval:  interval,
	}
}

// Start schedules the job on a recurring timer.
func (j *DigestJob) Start() error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), j.Run); err != nil {
		return err
	}
	j.cron.Start()
	slog.Info("digest job scheduled", "interval", j.interval.String())
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (j *DigestJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Run executes one scan-group-notify cycle. Failures are logged and never
// propagate; the next scheduled run must not be blocked by this one.
func (j *DigestJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		slog.Warn("digest run still in progress, skipping tick")
		return
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	slog.Info("checking for new tasks")
	groups, err := j.digests.Collect(ctx, j.interval)
	if err != nil {
		slog.Error("digest scan failed", "error", err)
		return
	}
	if len(groups) == 0 {
		slog.Info("no new tasks found")
		return
	}

	for _, group := range groups {
		j.notifier.SendDigest(ctx, group)
		j.publishEvent(ctx, group)
	}
}

func (j *DigestJob) publishEvent(ctx context.Context, group services.DigestGroup) {
	if j.publisher == nil {
		return
	}

	event := events.DigestEvent{
		Recipient: group.Recipient,
		TaskCount: len(group.Tasks),
		TaskIDs:   make([]int, 0, len(group.Tasks)),
	}
	for _, task := range group.Tasks {
		event.TaskIDs = append(event.TaskIDs, task.ID)
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode digest event", "error", err)
		return
	}
	if _, err := j.publisher.Publish(ctx, j.channel, data, map[string]string{"recipient": group.Recipient}); err != nil {
		slog.Error("failed to publish digest event", "recipient", group.Recipient, "error", err)
	}
}
