package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a tiny stand-in for the server that records requests.
type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	issues   []Issue
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"code": "UNAUTHORIZED", "message": "invalid email or password"},
			})
			return
		}
		writeJSON(w, http.StatusOK, AuthResponse{
			Message:   "Login successful",
			Token:     "tok-123",
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
			User:      User{ID: "u1", Name: "Sam", Email: in["email"], Role: "student"},
		})
	})
	mux.HandleFunc("/api/issues", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		switch r.Method {
		case http.MethodPost:
			require.NoError(t, r.ParseMultipartForm(1<<20))
			issue := Issue{
				ID:       "i1",
				Title:    r.FormValue("title"),
				Category: r.FormValue("category"),
				Status:   "Open",
			}
			if file, header, err := r.FormFile("image"); err == nil {
				data, _ := io.ReadAll(file)
				url := "/uploads/" + header.Filename + "?" + header.Header.Get("Content-Type") + "&" + string(data)
				issue.ImageURL = &url
			}
			f.mu.Lock()
			f.issues = append([]Issue{issue}, f.issues...)
			f.mu.Unlock()
			writeJSON(w, http.StatusCreated, issueEnvelope{Message: "Issue reported successfully", Issue: issue})
		default:
			f.mu.Lock()
			issues := append([]Issue(nil), f.issues...)
			f.mu.Unlock()
			writeJSON(w, http.StatusOK, IssueList{Count: len(issues), Issues: issues})
		}
	})
	mux.HandleFunc("/api/issues/my-issues", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		issues := append([]Issue(nil), f.issues...)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, IssueList{Count: len(issues), Issues: issues})
	})
	mux.HandleFunc("/api/admin/issues", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		issues := append([]Issue(nil), f.issues...)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, IssueList{Count: len(issues), Issues: issues})
	})
	mux.HandleFunc("/api/admin/issues/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id := strings.TrimPrefix(r.URL.Path, "/api/admin/issues/")
		status := ""
		if strings.HasSuffix(id, "/resolve") {
			id = strings.TrimSuffix(id, "/resolve")
			status = "Resolved"
		} else {
			var in IssueUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in.Status != nil {
				status = *in.Status
			}
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.issues {
			if f.issues[i].ID == id {
				if status != "" {
					f.issues[i].Status = status
				}
				writeJSON(w, http.StatusOK, issueEnvelope{Message: "Issue updated successfully", Issue: f.issues[i]})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"code": "NOT_FOUND", "message": "issue not found"},
		})
	})
	return mux
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Clone(context.Background()))
}

func (f *fakeAPI) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/"}), api
}

func TestLoginStoresTokenAndAttachesIt(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	res, err := c.Login(ctx, "sam@campus.edu", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)

	session, err := c.Session()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "student", session.User.Role)

	_, err = c.MyIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", api.last().Header.Get("Authorization"))

	require.NoError(t, c.Logout())
	_, err = c.MyIssues(ctx)
	require.NoError(t, err)
	assert.Empty(t, api.last().Header.Get("Authorization"))
}

func TestAPIErrorDecoding(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Login(context.Background(), "sam@campus.edu", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	session, err := c.Session()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestCreateIssueSendsMultipart(t *testing.T) {
	c, api := newTestClient(t)

	issue, err := c.CreateIssue(context.Background(), NewIssue{
		Title:       "Broken light",
		Description: "Hallway light flickers",
		Category:    "Electrical",
		Image: &ImageFile{
			Name:        "/tmp/photo.png",
			ContentType: "image/png",
			Data:        strings.NewReader("png-bytes"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Broken light", issue.Title)
	assert.Equal(t, "Open", issue.Status)
	require.NotNil(t, issue.ImageURL)
	assert.Equal(t, "/uploads/photo.png?image/png&png-bytes", *issue.ImageURL)
	assert.True(t, strings.HasPrefix(api.last().Header.Get("Content-Type"), "multipart/form-data"))
}

func TestFilterQuery(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.ListIssues(ctx, Filter{Category: "Water", Status: "In Progress"})
	require.NoError(t, err)
	q := api.last().URL.Query()
	assert.Equal(t, "Water", q.Get("category"))
	assert.Equal(t, "In Progress", q.Get("status"))

	_, err = c.AdminListIssues(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, api.last().URL.RawQuery)
}

func TestUpdateUnknownIssue(t *testing.T) {
	c, _ := newTestClient(t)
	status := "Resolved"

	_, err := c.UpdateIssue(context.Background(), "missing", IssueUpdate{Status: &status})
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestIssueBoardRefetchesAfterMutations(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	student := NewIssueBoard(c, ScopeMine)
	require.NoError(t, student.Refresh(ctx))
	assert.Empty(t, student.Issues())

	_, err := student.Create(ctx, NewIssue{Title: "Leak", Description: "Sink", Category: "Water"})
	require.NoError(t, err)
	require.Len(t, student.Issues(), 1)
	assert.Equal(t, "/api/issues/my-issues", api.last().URL.Path)

	admin := NewIssueBoard(c, ScopeAll)
	require.NoError(t, admin.Load(ctx, Filter{Status: "Open"}))
	assert.Equal(t, "Open", admin.Filter().Status)

	progress := "In Progress"
	_, err = admin.Update(ctx, "i1", IssueUpdate{Status: &progress})
	require.NoError(t, err)
	assert.Equal(t, "In Progress", admin.Issues()[0].Status)

	_, err = admin.Resolve(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Resolved", admin.Issues()[0].Status)
	assert.Equal(t, "/api/admin/issues", api.last().URL.Path)
}

func TestFileTokenStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileTokenStore(path).Load()
	assert.ErrorContains(t, err, "corrupt session file")
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileTokenStore(path)

	session, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)

	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Save(&Session{Token: "abc", ExpiresAt: expires, User: User{ID: "u1"}}))

	session, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "abc", session.Token)
	assert.True(t, expires.Equal(session.ExpiresAt))
	assert.False(t, session.Expired(expires.Add(-time.Second)))
	assert.True(t, session.Expired(expires))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	session, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)
}
