// Package session keeps per-client state in a signed (and optionally
// encrypted) cookie.
package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
)

const CookieName = "sitekit_session"

// State is what gets persisted to the client's cookie.
type State struct {
	UserID  string
	Captcha string // Answer to the last challenge issued
}

// Manager reads and writes the session cookie.
type Manager struct {
	secureCookie *securecookie.SecureCookie
	https        bool // Whether or not the cookie is limited to HTTPS
}

func NewManager(hashKey, blockKey []byte, https bool) Manager {
	// securecookie only skips encryption for a nil key, not an empty one.
	var block []byte
	if len(blockKey) > 0 {
		block = blockKey
	}

	return Manager{
		secureCookie: securecookie.New(hashKey, block),
		https:        https,
	}
}

// Load fetches the session tied to the request. The boolean is false when the
// client sent no usable session cookie.
func (m Manager) Load(r *http.Request) (State, bool) {
	cookie, err := r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return State{}, false
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "error fetching cookie", "err", err)
		return State{}, false
	}

	value := State{}
	if err := m.secureCookie.Decode(CookieName, cookie.Value, &value); err != nil {
		slog.ErrorContext(r.Context(), "error decoding cookie", "err", err)
		return State{}, false
	}

	return value, true
}

// Save writes the session onto the response.
func (m Manager) Save(w http.ResponseWriter, state State) error {
	encoded, err := m.secureCookie.Encode(CookieName, state)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		Secure:   m.https,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
	return nil
}

// Update loads the current session, applies fn and saves the result.
func (m Manager) Update(w http.ResponseWriter, r *http.Request, fn func(*State)) error {
	state, _ := m.Load(r)
	fn(&state)
	return m.Save(w, state)
}

// CaptchaAnswer exposes the pending challenge answer to the captcha store.
func (m Manager) CaptchaAnswer(r *http.Request) (string, bool) {
	state, ok := m.Load(r)
	if !ok || state.Captcha == "" {
		return "", false
	}

	return state.Captcha, true
}
