package api

import (
	"context"
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jdholdren/sitekit/internal/cache"
	"github.com/jdholdren/sitekit/internal/serverutil"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

const (
	popularSize     = 10
	popularKeyFmt   = "popular:%s"
	userCountKeyFmt = "comments:count:%s"
)

func objectRef(r *http.Request) sitekit.ObjectRef {
	vars := mux.Vars(r)
	return sitekit.ObjectRef{
		ContentType: vars["contentType"],
		ObjectID:    vars["objectID"],
	}
}

type ObjectResp struct {
	XMLName     xml.Name `json:"-" xml:"object" yaml:"-"`
	ContentType string   `json:"content_type" xml:"content_type" yaml:"content_type"`
	ObjectID    string   `json:"object_id" xml:"object_id" yaml:"object_id"`
	Visits      int      `json:"visits" xml:"visits" yaml:"visits"`
}

// Records a view of the object and reports how often it's been seen.
func (s Server) getObject(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		ref  = objectRef(r)
		sess = s.viewer(r)
	)

	if err := s.repo.CountObject(ctx, ref, sess.UserID); err != nil {
		return err
	}
	visits, err := s.repo.Visits(ctx, ref)
	if err != nil {
		return err
	}

	return serverutil.WriteSerialized(w, r, http.StatusOK, ObjectResp{
		ContentType: ref.ContentType,
		ObjectID:    ref.ObjectID,
		Visits:      visits,
	})
}

type PopularResp struct {
	XMLName     xml.Name              `json:"-" xml:"popular" yaml:"-"`
	ContentType string                `json:"content_type" xml:"content_type,attr" yaml:"content_type"`
	Objects     []sitekit.ObjectScore `json:"objects" xml:"object" yaml:"objects"`
}

// The most visited objects of a type. The list is cached for the configured
// TTL; ?n= trims it.
func (s Server) getPopular(w http.ResponseWriter, r *http.Request) error {
	contentType := mux.Vars(r)["contentType"]

	scores, err := s.popular(contentType)(r.Context())
	if err != nil {
		return err
	}

	if n, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && n >= 0 && n < len(scores) {
		scores = scores[:n]
	}

	return serverutil.WriteSerialized(w, r, http.StatusOK, PopularResp{
		ContentType: contentType,
		Objects:     scores,
	})
}

func (s Server) popular(contentType string) func(context.Context) ([]sitekit.ObjectScore, error) {
	return cache.Cacheable(s.cache, cache.Key(popularKeyFmt, contentType), func(ctx context.Context) ([]sitekit.ObjectScore, error) {
		return s.repo.MostVisited(ctx, contentType, popularSize)
	})
}
