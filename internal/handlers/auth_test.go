package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndDuplicateConflict(t *testing.T) {
	router := newTestRouter()

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "u@x",
		"password": "p",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "u@x", body["email"])
	assert.Contains(t, body, "id")
	assert.Contains(t, body, "created_at")
	assert.NotContains(t, body, "password_hash")

	resp = doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "u@x",
		"password": "other",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	errBody := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "Email already exists", errBody.Error)
}

func TestRegisterMissingFields(t *testing.T) {
	router := newTestRouter()

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{"email": "u@x"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	errBody := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "Email and password required", errBody.Error)
}

func TestLoginIssuesTokenWithIdentityClaims(t *testing.T) {
	router := newTestRouter()
	token, userID := registerAndLogin(t, router, "u@x", "p")

	identity, err := parseTokenIdentity(token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "u@x", identity.Email)
}

// Wrong password and nonexistent email must yield the same 401 body.
func TestLoginUniformInvalidCredentials(t *testing.T) {
	router := newTestRouter()
	registerAndLogin(t, router, "u@x", "p")

	wrongPass := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "u@x",
		"password": "wrong",
	})
	unknownUser := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "nobody@x",
		"password": "p",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, wrongPass.Body.String())
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestRequireAuthFailures(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{name: "missing header", header: "", message: "No authorization header"},
		{name: "wrong scheme", header: "Basic abc", message: "Invalid authorization header"},
		{name: "one part", header: "Bearer", message: "Invalid authorization header"},
		{name: "garbage token", header: "Bearer not-a-jwt", message: "Invalid token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			require.Equal(t, http.StatusUnauthorized, recorder.Code)
			errBody := decodeBody[ErrorResponse](t, recorder)
			assert.Equal(t, tc.message, errBody.Error)
		})
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	router := newTestRouter()

	token, err := issueToken(1, "u@x", []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	resp := doJSON(t, router, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	errBody := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "Invalid token", errBody.Error)
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	router := newTestRouter()

	token, err := issueToken(1, "u@x", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	resp := doJSON(t, router, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
