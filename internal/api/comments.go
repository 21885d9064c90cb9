package api

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"strings"
	"time"

	goaway "github.com/TwiN/go-away"

	"github.com/jdholdren/sitekit/internal/cache"
	skerrs "github.com/jdholdren/sitekit/internal/errors"
	"github.com/jdholdren/sitekit/internal/pagination"
	"github.com/jdholdren/sitekit/internal/serverutil"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

const (
	commentsPerPage = 20
	maxCommentLen   = 5000
)

type CommentResp struct {
	ID          string    `json:"id" xml:"id,attr" yaml:"id"`
	ContentType string    `json:"content_type" xml:"content_type" yaml:"content_type"`
	ObjectID    string    `json:"object_id" xml:"object_id" yaml:"object_id"`
	UserID      string    `json:"user_id" xml:"user_id" yaml:"user_id"`
	Body        string    `json:"body" xml:"body" yaml:"body"`
	CreatedAt   time.Time `json:"created_at" xml:"created_at" yaml:"created_at"`
}

func apiComment(c sitekit.Comment) CommentResp {
	return CommentResp{
		ID:          c.ID,
		ContentType: c.ContentType,
		ObjectID:    c.ObjectID,
		UserID:      c.UserID,
		Body:        c.Body,
		CreatedAt:   c.CreatedAt,
	}
}

// paginationMeta holds pagination metadata for serialized responses.
type paginationMeta struct {
	Page        int    `json:"page" xml:"page" yaml:"page"`
	Pages       int    `json:"pages" xml:"pages" yaml:"pages"`
	Total       int    `json:"total" xml:"total" yaml:"total"`
	PerPage     int    `json:"per_page" xml:"per_page" yaml:"per_page"`
	PageNumbers []int  `json:"page_numbers" xml:"page_numbers>page" yaml:"page_numbers"`
	Next        string `json:"next,omitempty" xml:"next,omitempty" yaml:"next,omitempty"`
	Previous    string `json:"previous,omitempty" xml:"previous,omitempty" yaml:"previous,omitempty"`
}

func calculatePaginationMeta(p pagination.Paginator) paginationMeta {
	meta := paginationMeta{
		Page:        p.Page,
		Pages:       p.Pages,
		Total:       p.Hits,
		PerPage:     p.ResultsPerPage,
		PageNumbers: p.PageNumbers,
	}
	if p.HasNext {
		meta.Next = p.URL(p.Next)
	}
	if p.HasPrevious {
		meta.Previous = p.URL(p.Previous)
	}

	return meta
}

type CommentPageResp struct {
	XMLName    xml.Name       `json:"-" xml:"comments" yaml:"-"`
	Comments   []CommentResp  `json:"comments" xml:"comment" yaml:"comments"`
	Pagination paginationMeta `json:"pagination" xml:"pagination" yaml:"pagination"`
}

// One page worth of an object's comments.
type commentPage struct {
	Ref       sitekit.ObjectRef
	Comments  []sitekit.Comment
	Paginator pagination.Paginator
}

func (s Server) loadCommentPage(ctx context.Context, r *http.Request, ref sitekit.ObjectRef) (commentPage, error) {
	total, err := s.repo.CountObjectComments(ctx, ref)
	if err != nil {
		return commentPage{}, err
	}

	p := pagination.FromRequest(r, total, commentsPerPage, pagination.DefaultAdjacent)
	comments, err := s.repo.ObjectComments(ctx, ref, p.Limit(), p.Offset())
	if err != nil {
		return commentPage{}, err
	}

	return commentPage{Ref: ref, Comments: comments, Paginator: p}, nil
}

func (s Server) getComments(w http.ResponseWriter, r *http.Request) error {
	ref := objectRef(r)
	if wantsHTML(r) {
		return s.renderComments(w, r, ref, http.StatusOK, "")
	}

	page, err := s.loadCommentPage(r.Context(), r, ref)
	if err != nil {
		return err
	}

	resp := CommentPageResp{
		Comments:   make([]CommentResp, 0, len(page.Comments)),
		Pagination: calculatePaginationMeta(page.Paginator),
	}
	for _, c := range page.Comments {
		resp.Comments = append(resp.Comments, apiComment(c))
	}

	return serverutil.WriteSerialized(w, r, http.StatusOK, resp)
}

// Posts a comment from a form. The captcha is checked before anything else
// about the submission.
func (s Server) postComment(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx = r.Context()
		ref = objectRef(r)
	)

	usr, err := s.requireUser(r)
	if err != nil {
		return err
	}
	if err := r.ParseForm(); err != nil {
		return skerrs.E(err, http.StatusBadRequest)
	}

	if err := s.checkCaptcha(w, r, strings.TrimSpace(r.PostForm.Get("captcha"))); err != nil {
		return s.formError(w, r, ref, err)
	}

	body, err := s.cleanCommentBody(r.PostForm.Get("body"))
	if err != nil {
		return s.formError(w, r, ref, err)
	}

	var created sitekit.Comment
	insert := cache.Stale(s.cache, cache.Key(userCountKeyFmt, usr.ID), func(ctx context.Context) error {
		var err error
		created, err = s.repo.InsertComment(ctx, sitekit.Comment{
			ObjectRef: ref,
			UserID:    usr.ID,
			Body:      body,
			IsPublic:  true,
		})
		return err
	})
	if err := insert(ctx); err != nil {
		return err
	}
	s.metrics.RecordComment(ref.ContentType)

	if wantsHTML(r) {
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return nil
	}

	return serverutil.WriteSerialized(w, r, http.StatusCreated, apiComment(created))
}

// Strips markup and refuses empty, overly long or profane comments.
func (s Server) cleanCommentBody(raw string) (string, error) {
	body := strings.TrimSpace(s.stripper.Sanitize(strings.TrimSpace(raw)))
	if body == "" {
		return "", skerrs.E("comment is empty", http.StatusBadRequest, skerrs.Field("body", "required"))
	}
	if len(body) > maxCommentLen {
		return "", skerrs.E("comment too long", http.StatusUnprocessableEntity, skerrs.Field("body", "too long"))
	}
	if goaway.IsProfane(body) {
		return "", skerrs.E("profanity detected in comment", http.StatusUnprocessableEntity, skerrs.Field("body", "profanity"))
	}

	return body, nil
}

// Browsers get the form back with the problem shown; everyone else gets the error.
func (s Server) formError(w http.ResponseWriter, r *http.Request, ref sitekit.ObjectRef, err error) error {
	sErr := &skerrs.Error{}
	if !wantsHTML(r) || !errors.As(err, &sErr) {
		return err
	}

	msg := sErr.Err.Error()
	if len(sErr.Details) > 0 {
		msg = sErr.Details[0].Error
	}

	return s.renderComments(w, r, ref, sErr.Status, msg)
}
