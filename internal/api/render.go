package api

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jdholdren/sitekit/internal/menu"
	"github.com/jdholdren/sitekit/internal/pagination"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

//go:embed templates/*.html
var templateFS embed.FS

const rootMenu = "root"

func parseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// pageContext is the request data every page gets.
type pageContext struct {
	Sort     string // ?s=
	Query    string // ?q=
	Host     string
	FullPath string
	IsSecure bool
	IsAjax   bool
}

func newPageContext(r *http.Request) pageContext {
	q := r.URL.Query()
	return pageContext{
		Sort:     q.Get("s"),
		Query:    q.Get("q"),
		Host:     r.Host,
		FullPath: r.URL.RequestURI(),
		IsSecure: r.TLS != nil || r.URL.Scheme == "https",
		IsAjax:   r.Header.Get("X-Requested-With") == "XMLHttpRequest",
	}
}

// AbsoluteURL is the page's own address, as the client sees it.
func (c pageContext) AbsoluteURL() string {
	scheme := "http"
	if c.IsSecure {
		scheme = "https"
	}

	return scheme + "://" + c.Host + c.FullPath
}

type pageData struct {
	Ctx           pageContext
	Menus         []menu.Bar
	AnalyticsKey  string
	ShareUsername string
	ShareURL      string
	Title         string

	// Comments page
	Ref            sitekit.ObjectRef
	Comments       []sitekit.Comment
	Paginator      pagination.Paginator
	Error          string
	SignedIn       bool
	ViewerComments int
}

func (s Server) newPageData(r *http.Request, title, activeRoute string) pageData {
	ctx := newPageContext(r)

	bars, err := s.menus.RenderPath(rootMenu, activeRoute)
	if err != nil {
		slog.WarnContext(r.Context(), "error rendering menus", "err", err)
	}

	data := pageData{
		Ctx:           ctx,
		Menus:         bars,
		AnalyticsKey:  s.analyticsKey,
		ShareUsername: s.shareUsername,
		Title:         title,
	}
	if s.shareUsername != "" {
		data.ShareURL = shareURL(ctx.AbsoluteURL(), title, s.shareUsername)
	}

	return data
}

func shareURL(pageURL, text, username string) string {
	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("text", text)
	q.Set("via", username)

	return "https://twitter.com/intent/tweet?" + q.Encode()
}

// Renders into a buffer first so a template error doesn't leave half a page behind.
func (s Server) render(w http.ResponseWriter, status int, name string, data pageData) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// wantsHTML is true for browsers that didn't explicitly ask for a serialized format.
func wantsHTML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "" && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (s Server) renderComments(w http.ResponseWriter, r *http.Request, ref sitekit.ObjectRef, status int, errMsg string) error {
	page, err := s.loadCommentPage(r.Context(), r, ref)
	if err != nil {
		return err
	}

	data := s.newPageData(r, "Comments on "+ref.ContentType+" "+ref.ObjectID, "")
	data.Ref = ref
	data.Comments = page.Comments
	data.Paginator = page.Paginator
	data.Error = errMsg

	if userID := s.viewer(r).UserID; userID != "" {
		data.SignedIn = true
		if data.ViewerComments, err = s.userCommentCount(userID)(r.Context()); err != nil {
			return err
		}
	}

	return s.render(w, status, "comments.html", data)
}
