package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/apiserver/types"
)

func seedDigestRepo(t *testing.T) *fakeTaskRepo {
	t.Helper()
	repo := newFakeTaskRepo()
	repo.emails[1] = "a@x"

	now := time.Now()
	owner := 1
	// Creation order: task1 (owned), task2 (unowned), task3 (owned). The scan
	// returns creation-descending, so groups must list task3 before task1.
	for i, task := range []types.Task{
		{Title: "task1", UserID: &owner},
		{Title: "task2"},
		{Title: "task3", UserID: &owner},
	} {
		task.CreatedAt = now.Add(time.Duration(i-3) * time.Second)
		_, err := repo.Create(context.Background(), task)
		require.NoError(t, err)
	}
	return repo
}

func TestCollectGroupsByOwnerEmailWithFallback(t *testing.T) {
	repo := seedDigestRepo(t)
	svc := NewDigestService(repo, "ops@x")

	groups, err := svc.Collect(context.Background(), 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// First occurrence in scan order (creation descending) is task3's owner.
	assert.Equal(t, "a@x", groups[0].Recipient)
	require.Len(t, groups[0].Tasks, 2)
	assert.Equal(t, "task3", groups[0].Tasks[0].Title)
	assert.Equal(t, "task1", groups[0].Tasks[1].Title)

	assert.Equal(t, "ops@x", groups[1].Recipient)
	require.Len(t, groups[1].Tasks, 1)
	assert.Equal(t, "task2", groups[1].Tasks[0].Title)
}

func TestCollectUnknownRecipientWithoutFallback(t *testing.T) {
	repo := seedDigestRepo(t)
	svc := NewDigestService(repo, "")

	groups, err := svc.Collect(context.Background(), 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "unknown", groups[1].Recipient)
}

func TestCollectHonorsWindow(t *testing.T) {
	repo := newFakeTaskRepo()
	_, err := repo.Create(context.Background(), types.Task{
		Title:     "stale",
		CreatedAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	svc := NewDigestService(repo, "ops@x")
	groups, err := svc.Collect(context.Background(), 5*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
