package api

import (
	"errors"
	"net/http"
	"strings"

	skerrs "github.com/jdholdren/sitekit/internal/errors"
	"github.com/jdholdren/sitekit/internal/serverutil"
	"github.com/jdholdren/sitekit/internal/session"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

// The session of whoever is making the request, possibly empty.
func (s Server) viewer(r *http.Request) session.State {
	state, _ := s.sessions.Load(r)
	return state
}

// The signed in, active user behind the request.
func (s Server) requireUser(r *http.Request) (sitekit.User, error) {
	state := s.viewer(r)
	if state.UserID == "" {
		return sitekit.User{}, skerrs.E("sign in to continue", http.StatusUnauthorized)
	}

	usr, err := s.repo.User(r.Context(), state.UserID)
	if errors.Is(err, sitekit.ErrNotFound) {
		return sitekit.User{}, skerrs.E("sign in to continue", http.StatusUnauthorized)
	}
	if err != nil {
		return sitekit.User{}, err
	}
	if !usr.IsActive {
		return sitekit.User{}, skerrs.E("account is inactive", http.StatusForbidden)
	}

	return usr, nil
}

type DebugLogin struct {
	Name string `json:"name"`
}

func (l DebugLogin) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return skerrs.E("name is required", http.StatusBadRequest, skerrs.Field("name", "required"))
	}

	return nil
}

// Signs in as the named user, creating them if needed. Only mounted with debug endpoints on.
func (s Server) handleDebugLogin(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[DebugLogin](r.Body)
	if err != nil {
		return skerrs.E(err, http.StatusBadRequest)
	}

	usr, err := s.repo.EnsureUser(r.Context(), sitekit.User{Name: strings.TrimSpace(body.Name)})
	if err != nil {
		return err
	}

	// Issue an update to their session so they're logged in
	if err := s.sessions.Update(w, r, func(st *session.State) { st.UserID = usr.ID }); err != nil {
		return err
	}

	return writeUser(w, r, http.StatusOK, usr)
}
