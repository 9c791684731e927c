package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-fixit/issue-service/pkg/client"
)

func testServer(t *testing.T, role string) *httptest.Server {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	issue := client.Issue{
		ID:          "6b0f3c1e-0000-4000-8000-000000000001",
		Title:       "Leaking tap",
		Description: "Second floor washroom",
		Category:    "Water",
		Status:      "Open",
		CreatedBy:   client.Person{ID: "u1", Name: "Sam", Email: "sam@campus.edu"},
		Remarks:     []client.Remark{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, client.AuthResponse{
			Message:   "Login successful",
			Token:     "tok",
			ExpiresAt: time.Now().Add(time.Hour),
			User:      client.User{ID: "u1", Name: "Sam", Email: "sam@campus.edu", Role: role},
		})
	})
	mux.HandleFunc("/api/issues/my-issues", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, client.IssueList{Count: 1, Issues: []client.Issue{issue}})
	})
	mux.HandleFunc("/api/admin/issues/", func(w http.ResponseWriter, r *http.Request) {
		var in client.IssueUpdate
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Remark != nil {
			issue.Remarks = append(issue.Remarks, client.Remark{
				Text: *in.Remark, AddedBy: client.Person{Name: "Admin"}, AddedAt: now,
			})
		}
		if in.Status != nil {
			issue.Status = *in.Status
		}
		reply(w, http.StatusOK, map[string]any{"message": "Issue updated successfully", "issue": issue})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func run(t *testing.T, store client.TokenStore, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, store)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginThenListMine(t *testing.T) {
	srv := testServer(t, "student")
	store := client.NewMemoryTokenStore()

	_, err := run(t, store, "--server", srv.URL, "issues", "mine")
	require.ErrorIs(t, err, errNotLoggedIn)

	out, err := run(t, store, "--server", srv.URL, "login", "--email", "sam@campus.edu", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Sam <sam@campus.edu> (student)")

	out, err = run(t, store, "--server", srv.URL, "issues", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Leaking tap")
	assert.Contains(t, out, "Open")

	out, err = run(t, store, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role: student")

	_, err = run(t, store, "--server", srv.URL, "admin", "list")
	require.EqualError(t, err, "admin commands need an admin account")

	_, err = run(t, store, "logout")
	require.NoError(t, err)
	_, err = run(t, store, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestServerAndSessionFromEnvironment(t *testing.T) {
	srv := testServer(t, "student")
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	t.Setenv(serverEnv, srv.URL)
	t.Setenv("FIXIT_SESSION", sessionPath)

	out, err := run(t, nil, "login", "--email", "sam@campus.edu", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Sam")

	session, err := client.NewFileTokenStore(sessionPath).Load()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, srv.URL, session.Server)

	out, err = run(t, nil, "issues", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Leaking tap")

	// An explicit flag beats the environment.
	_, err = run(t, nil, "--server", "http://127.0.0.1:1", "--timeout", "200ms", "issues", "mine")
	require.Error(t, err)
}

func TestAdminUpdatePrintsRemarks(t *testing.T) {
	srv := testServer(t, "admin")
	store := client.NewMemoryTokenStore()

	_, err := run(t, store, "--server", srv.URL, "login", "--email", "a@campus.edu", "--password", "secret123")
	require.NoError(t, err)

	out, err := run(t, store, "--server", srv.URL, "admin", "update", "6b0f3c1e-0000-4000-8000-000000000001",
		"--status", "In Progress", "--remark", "Plumber booked")
	require.NoError(t, err)
	assert.Contains(t, out, "Issue updated successfully")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "Remarks (1):")
	assert.Contains(t, out, "Admin: Plumber booked")
}

func TestStatusColour(t *testing.T) {
	a := &cli{color: true}
	assert.Equal(t, "\x1b[38;2;16;185;129mResolved\x1b[0m", a.status("Resolved"))

	a.color = false
	assert.Equal(t, "Resolved", a.status("Resolved"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
