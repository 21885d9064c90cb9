package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skerrs "github.com/jdholdren/sitekit/internal/errors"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

const commentsPath = "/objects/post/intro/comments"

func decodeErr(t *testing.T, body []byte) skerrs.Error {
	t.Helper()

	var sErr skerrs.Error
	require.NoError(t, json.Unmarshal(body, &sErr))
	return sErr
}

func TestPostComment(t *testing.T) {
	var (
		repo   = newTestRepo(t)
		client = newTestClient(t, newTestServer(t, repo))
		usr    = client.login("ada")
		answer = client.requestCaptcha()
	)

	rec := client.postForm(commentsPath, url.Values{
		"body":    {"  <b>Nice</b> post  "},
		"captcha": {answer},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CommentResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "Nice post", created.Body)
	assert.Equal(t, usr.ID, created.UserID)
	assert.Equal(t, "post", created.ContentType)
	assert.Equal(t, "intro", created.ObjectID)

	// The answer is forgotten once it's been checked
	assert.Empty(t, client.session().Captcha)
	assert.Equal(t, usr.ID, client.session().UserID)

	rec = client.get(commentsPath)
	require.Equal(t, http.StatusOK, rec.Code)
	var page CommentPageResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Comments, 1)
	assert.Equal(t, created.ID, page.Comments[0].ID)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestPostComment_CaptchaMismatch(t *testing.T) {
	var (
		repo   = newTestRepo(t)
		client = newTestClient(t, newTestServer(t, repo))
	)
	client.login("ada")
	answer := client.requestCaptcha()

	rec := client.postForm(commentsPath, url.Values{
		"body":    {"hello"},
		"captcha": {answer + "0"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	sErr := decodeErr(t, rec.Body.Bytes())
	assert.Equal(t, []skerrs.Detail{skerrs.Field("captcha", "Incorrect! Try again.")}, sErr.Details)

	// A wrong guess burns the challenge, so the right answer no longer works
	rec = client.postForm(commentsPath, url.Values{
		"body":    {"hello"},
		"captcha": {answer},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	sErr = decodeErr(t, rec.Body.Bytes())
	assert.Equal(t, []skerrs.Detail{skerrs.Field("captcha", "You must enable cookies.")}, sErr.Details)

	count, err := repo.CountObjectComments(t.Context(), sitekit.ObjectRef{ContentType: "post", ObjectID: "intro"})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostComment_NoChallenge(t *testing.T) {
	client := newTestClient(t, newTestServer(t, newTestRepo(t)))
	client.login("ada")

	rec := client.postForm(commentsPath, url.Values{
		"body":    {"hello"},
		"captcha": {"1234"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	sErr := decodeErr(t, rec.Body.Bytes())
	assert.Equal(t, []skerrs.Detail{skerrs.Field("captcha", "You must enable cookies.")}, sErr.Details)
}

func TestPostComment_Rejections(t *testing.T) {
	tt := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{name: "empty", body: "   ", status: http.StatusBadRequest, field: "body"},
		{name: "only markup", body: "<script></script>", status: http.StatusBadRequest, field: "body"},
		{name: "profane", body: "what the fuck", status: http.StatusUnprocessableEntity, field: "body"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, newTestServer(t, newTestRepo(t)))
			client.login("ada")
			answer := client.requestCaptcha()

			rec := client.postForm(commentsPath, url.Values{
				"body":    {tc.body},
				"captcha": {answer},
			})
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			sErr := decodeErr(t, rec.Body.Bytes())
			require.Len(t, sErr.Details, 1)
			assert.Equal(t, tc.field, sErr.Details[0].Field)
		})
	}
}

func TestPostComment_SignedOut(t *testing.T) {
	client := newTestClient(t, newTestServer(t, newTestRepo(t)))
	client.requestCaptcha()

	rec := client.postForm(commentsPath, url.Values{"body": {"hello"}, "captcha": {"1234"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostComment_InactiveUser(t *testing.T) {
	var (
		repo   = newTestRepo(t)
		client = newTestClient(t, newTestServer(t, repo))
		usr    = client.login("ada")
	)
	require.NoError(t, repo.SetUserActive(t.Context(), usr.ID, false))

	rec := client.postForm(commentsPath, url.Values{"body": {"hello"}, "captcha": {"1234"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostComment_HTML(t *testing.T) {
	var (
		repo   = newTestRepo(t)
		client = newTestClient(t, newTestServer(t, repo))
	)
	client.login("ada")

	// Wrong answer: the form comes back with the message on it
	client.requestCaptcha()
	rec := client.postForm(commentsPath, url.Values{"body": {"hello"}, "captcha": {"nope"}}, "Accept", "text/html")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `<p class="error">Incorrect! Try again.</p>`)

	answer := client.requestCaptcha()
	rec = client.postForm(commentsPath, url.Values{"body": {"hello"}, "captcha": {answer}}, "Accept", "text/html")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, commentsPath, rec.Header().Get("Location"))

	rec = client.get(commentsPath, "Accept", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<p>hello</p>")
	assert.Contains(t, rec.Body.String(), "You have written 1 comments.")
}

func TestGetComments_Paginated(t *testing.T) {
	var (
		repo   = newTestRepo(t)
		client = newTestClient(t, newTestServer(t, repo))
		ref    = sitekit.ObjectRef{ContentType: "post", ObjectID: "intro"}
	)
	usr := client.login("ada")
	for i := range 3*commentsPerPage + 5 {
		mustComment(t, repo, ref, usr.ID, fmt.Sprintf("comment %d", i))
	}

	rec := client.get(commentsPath + "?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var page CommentPageResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Comments, commentsPerPage)
	assert.Equal(t, "comment 20", page.Comments[0].Body)
	assert.Equal(t, paginationMeta{
		Page:        2,
		Pages:       4,
		Total:       3*commentsPerPage + 5,
		PerPage:     commentsPerPage,
		PageNumbers: []int{1, 2, 3, 4},
		Next:        commentsPath + "?page=3",
		Previous:    commentsPath + "?page=1",
	}, page.Pagination)

	// Other parameters survive in the page links
	rec = client.get(commentsPath+"?s=new&page=4", "Accept", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, `<span class="current">4</span>`)
	assert.Contains(t, html, `href="/objects/post/intro/comments?s=new&amp;page=3"`)
	assert.NotContains(t, html, `rel="next"`)
	assert.Contains(t, html, "comment 64")
}

func TestGetComments_FarPage(t *testing.T) {
	var (
		repo   = newTestRepo(t)
		client = newTestClient(t, newTestServer(t, repo))
		ref    = sitekit.ObjectRef{ContentType: "post", ObjectID: "intro"}
	)
	usr := client.login("ada")
	for i := range 10 * commentsPerPage {
		mustComment(t, repo, ref, usr.ID, fmt.Sprintf("comment %d", i))
	}

	rec := client.get(commentsPath + "?page=6&format=xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "xml")
	assert.Contains(t, rec.Body.String(), "<page_numbers><page>4</page><page>5</page><page>6</page><page>7</page><page>8</page></page_numbers>")
}
