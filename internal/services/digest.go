package services

import (
	"context"
	"time"
)

// unknownRecipient is the last-resort grouping key when a task has no owner
// and no fallback address is configured.
const unknownRecipient = "unknown"

// DigestGroup is one recipient's batch of recently created tasks.
type DigestGroup struct {
	Recipient string
	Tasks     []TaskDigestEntry
}

// TaskDigestEntry is the slice of a task the digest needs.
type TaskDigestEntry struct {
	ID          int
	Title       string
	Description *string
}

// DigestService scans for recently created tasks and batches them per
// recipient for the notifier.
type DigestService struct {
	repo     TaskRepository
	fallback string
}

func NewDigestService(repo TaskRepository, fallbackRecipient string) *DigestService {
	return &DigestService{repo: repo, fallback: fallbackRecipient}
}

// Collect returns one group per recipient for tasks created within the
// trailing window. Groups appear in order of first occurrence; tasks within a
// group keep the scan's creation-descending order.
func (s *DigestService) Collect(ctx context.Context, window time.Duration) ([]DigestGroup, error) {
	cutoff := time.Now().Add(-window)
	tasks, err := s.repo.ListCreatedSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	indexByRecipient := make(map[string]int, len(tasks))
	groups := make([]DigestGroup, 0, len(tasks))
	for _, task := range tasks {
		recipient := s.recipientKey(task.OwnerEmail)
		idx, ok := indexByRecipient[recipient]
		if !ok {
			idx = len(groups)
			indexByRecipient[recipient] = idx
			groups = append(groups, DigestGroup{Recipient: recipient})
		}
		groups[idx].Tasks = append(groups[idx].Tasks, TaskDigestEntry{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
		})
	}
	return groups, nil
}

func (s *DigestService) recipientKey(ownerEmail *string) string {
	if ownerEmail != nil && *ownerEmail != "" {
		return *ownerEmail
	}
	if s.fallback != "" {
		return s.fallback
	}
	return unknownRecipient
}
