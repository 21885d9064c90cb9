package api

import (
	"context"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jdholdren/sitekit/internal/cache"
	"github.com/jdholdren/sitekit/internal/serverutil"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

type UserResp struct {
	XMLName   xml.Name  `json:"-" xml:"user" yaml:"-"`
	ID        string    `json:"id" xml:"id" yaml:"id"`
	Name      string    `json:"name" xml:"name" yaml:"name"`
	IsActive  bool      `json:"is_active" xml:"is_active" yaml:"is_active"`
	CreatedAt time.Time `json:"created_at" xml:"created_at" yaml:"created_at"`
}

func writeUser(w http.ResponseWriter, r *http.Request, status int, usr sitekit.User) error {
	return serverutil.WriteSerialized(w, r, status, UserResp{
		ID:        usr.ID,
		Name:      usr.Name,
		IsActive:  usr.IsActive,
		CreatedAt: usr.CreatedAt,
	})
}

type CommentCountResp struct {
	XMLName xml.Name `json:"-" xml:"comment_count" yaml:"-"`
	UserID  string   `json:"user_id" xml:"user_id,attr" yaml:"user_id"`
	Count   int      `json:"count" xml:",chardata" yaml:"count"`
}

func (s Server) getUserCommentCount(w http.ResponseWriter, r *http.Request) error {
	userID := mux.Vars(r)["userID"]

	count, err := s.userCommentCount(userID)(r.Context())
	if err != nil {
		return err
	}

	return serverutil.WriteSerialized(w, r, http.StatusOK, CommentCountResp{
		UserID: userID,
		Count:  count,
	})
}

// Cached until the user comments again or the TTL runs out.
func (s Server) userCommentCount(userID string) func(context.Context) (int, error) {
	return cache.Cacheable(s.cache, cache.Key(userCountKeyFmt, userID), func(ctx context.Context) (int, error) {
		return s.repo.UserCommentCount(ctx, userID)
	})
}

type CommentListResp struct {
	XMLName  xml.Name      `json:"-" xml:"comments" yaml:"-"`
	Comments []CommentResp `json:"comments" xml:"comment" yaml:"comments"`
}

// A user's public comments; ?content_type= narrows them to one kind of object.
func (s Server) getUserComments(w http.ResponseWriter, r *http.Request) error {
	var (
		userID      = mux.Vars(r)["userID"]
		contentType = r.URL.Query().Get("content_type")
	)

	comments, err := s.repo.UserComments(r.Context(), userID, contentType)
	if err != nil {
		return err
	}

	resp := CommentListResp{Comments: make([]CommentResp, 0, len(comments))}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, apiComment(c))
	}

	return serverutil.WriteSerialized(w, r, http.StatusOK, resp)
}
