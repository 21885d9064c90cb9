package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jdholdren/sitekit/internal/migrations"
	"github.com/jdholdren/sitekit/internal/session"
	"github.com/jdholdren/sitekit/internal/sitekit"
	"github.com/jdholdren/sitekit/internal/sqlite"
)

var testHashKey = []byte("0123456789abcdef0123456789abcdef")

func newTestRepo(t *testing.T) sqlite.Repo {
	t.Helper()

	dbx, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })
	require.NoError(t, migrations.Run(dbx))

	return sqlite.New(dbx)
}

func newTestServer(t *testing.T, repo sitekit.Repository, mods ...func(*ServerConfig)) *Server {
	t.Helper()

	config := ServerConfig{
		Port:           0,
		CookieHashKey:  testHashKey,
		CaptchaLength:  4,
		DebugEndpoints: true,
	}
	for _, mod := range mods {
		mod(&config)
	}

	srvr, err := NewServer(config, repo)
	require.NoError(t, err)
	return srvr
}

// testClient keeps cookies between requests, like a browser would.
type testClient struct {
	t       *testing.T
	srvr    *Server
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, srvr *Server) *testClient {
	return &testClient{t: t, srvr: srvr, cookies: map[string]*http.Cookie{}}
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.srvr.Handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}

	return rec
}

func (c *testClient) get(path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	return c.do(req)
}

func (c *testClient) postForm(path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	return c.do(req)
}

func (c *testClient) login(name string) UserResp {
	c.t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"name":"`+name+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := c.do(req)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	var usr UserResp
	require.NoError(c.t, json.NewDecoder(rec.Body).Decode(&usr))
	return usr
}

// session decodes the client's cookie the same way the server does.
func (c *testClient) session() session.State {
	c.t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	state, _ := session.NewManager(testHashKey, nil, false).Load(req)
	return state
}

// requestCaptcha issues a challenge and returns its answer.
func (c *testClient) requestCaptcha() string {
	c.t.Helper()

	rec := c.get("/captcha")
	require.Equal(c.t, http.StatusOK, rec.Code)
	require.Equal(c.t, "image/png", rec.Header().Get("Content-Type"))

	answer := c.session().Captcha
	require.Len(c.t, answer, 4)
	return answer
}

func mustComment(t *testing.T, repo sitekit.Repository, ref sitekit.ObjectRef, userID, body string) sitekit.Comment {
	t.Helper()

	c, err := repo.InsertComment(context.Background(), sitekit.Comment{
		ObjectRef: ref,
		UserID:    userID,
		Body:      body,
		IsPublic:  true,
	})
	require.NoError(t, err)
	return c
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
