package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/apiserver/internal/services"
	"github.com/taskdeck/apiserver/internal/store"
	"github.com/taskdeck/apiserver/types"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	users  map[string]types.User
	nextID int
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return types.User{}, store.ErrConflict
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.Email] = user
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := r.users[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

type fakeTaskRepo struct {
	tasks  map[int]types.Task
	nextID int
}

func (r *fakeTaskRepo) Create(ctx context.Context, task types.Task) (types.Task, error) {
	task.ID = r.nextID
	r.nextID++
	task.CreatedAt = time.Now()
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) ListByOwner(ctx context.Context, userID int) ([]types.Task, error) {
	tasks := make([]types.Task, 0)
	for _, task := range r.tasks {
		if task.UserID != nil && *task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (r *fakeTaskRepo) ListAll(ctx context.Context) ([]types.Task, error) {
	tasks := make([]types.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (r *fakeTaskRepo) GetOwned(ctx context.Context, id, userID int) (types.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.UserID == nil || *task.UserID != userID {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *fakeTaskRepo) UpdateOwned(ctx context.Context, id, userID int, patch types.TaskPatch) (types.Task, error) {
	task, err := r.GetOwned(ctx, id, userID)
	if err != nil {
		return types.Task{}, err
	}
	if patch.Title.Set && patch.Title.Value != nil {
		task.Title = *patch.Title.Value
	}
	if patch.Description.Set {
		task.Description = patch.Description.Value
	}
	r.tasks[id] = task
	return task, nil
}

func (r *fakeTaskRepo) DeleteOwned(ctx context.Context, id, userID int) error {
	if _, err := r.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) ListCreatedSince(ctx context.Context, cutoff time.Time) ([]types.TaskWithOwner, error) {
	return nil, nil
}

// newTestRouter wires the real routers against in-memory repositories.
func newTestRouter() *chi.Mux {
	userService := services.NewUserService(&fakeUserRepo{users: make(map[string]types.User), nextID: 1})
	taskService := services.NewTaskService(&fakeTaskRepo{tasks: make(map[int]types.Task), nextID: 1})

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, 7*24*time.Hour)
	})
	router.Route("/tasks", func(r chi.Router) {
		TaskRouter(r, taskService, RequireAuth(testSecret), OptionalAuth(testSecret))
	})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value))
	return value
}

// registerAndLogin creates an account and returns a usable bearer token.
func registerAndLogin(t *testing.T, router http.Handler, email, password string) (token string, userID int) {
	t.Helper()

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	user := decodeBody[types.User](t, resp)

	resp = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	tokenResp := decodeBody[TokenResponse](t, resp)
	require.NotEmpty(t, tokenResp.Token)

	return tokenResp.Token, user.ID
}
