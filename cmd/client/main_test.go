package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers the content API routes used by the CLI.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/auth/login":
			var req struct{ Username, Password string }
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "admin123" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"success":true,"message":"Login successful","token":"tok-1","role":"admin"}`))
		case r.URL.Path == "/api/about":
			_, _ = w.Write([]byte(`{"success":true,"data":{"content":"We plan journeys","history":"Since 1999"}}`))
		case r.URL.Path == "/api/packages" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"p1","name":"Goa Escape","price":"12000","includes":["Hotel"]}]}`))
		case r.URL.Path == "/api/enquiries" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"e1"},"message":"Enquiry created successfully"}`))
		case r.URL.Path == "/api/enquiries/export":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Token is missing!"}`))
				return
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="enquiries.xlsx"`)
			_, _ = w.Write([]byte("xlsx-bytes"))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Resource not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type cli struct {
	api     string
	session string
}

func newCLI(t *testing.T) cli {
	return cli{api: fakeAPI(t).URL, session: filepath.Join(t.TempDir(), "session.json")}
}

func (c cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(append([]string{"--api-base", c.api, "--session-file", c.session}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Version: N/A")
}

func TestSite(t *testing.T) {
	c := newCLI(t)
	out, err := c.run(t, "", "site")
	require.NoError(t, err)
	assert.Contains(t, out, "Goa Escape")
	assert.Contains(t, out, "We plan journeys")
	assert.Contains(t, out, "Since 1999")
}

func TestSite_WatchRejectsNonPositiveRefresh(t *testing.T) {
	c := newCLI(t)
	for _, d := range []string{"0", "-5s"} {
		out, err := c.run(t, "", "site", "--watch", "--refresh", d)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--refresh must be positive")
		assert.NotContains(t, out, "About Us")
	}
}

func TestLoginLogout(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "wrong\n", "login", "-u", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.NoFileExists(t, c.session)

	out, err := c.run(t, "admin\nadmin123\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Login successful")
	data, err := os.ReadFile(c.session)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tok-1")

	out, err = c.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = c.run(t, "", "shell")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestEnquire(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "\n\n\n\n", "enquire")
	assert.Error(t, err, "a name is required")

	out, err := c.run(t, "Ravi\nravi@example.com\n\n\n", "enquire", "Goa Escape")
	require.NoError(t, err)
	assert.Contains(t, out, "Enquiry submitted successfully!")
}

func TestExport(t *testing.T) {
	c := newCLI(t)
	dir := t.TempDir()

	_, err := c.run(t, "", "export", dir)
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = c.run(t, "admin123\n", "login", "-u", "admin")
	require.NoError(t, err)

	out, err := c.run(t, "", "export", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "enquiries.xlsx")
	data, err := os.ReadFile(filepath.Join(dir, "enquiries.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))
}
