package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jdholdren/sitekit/internal/captcha"
	skerrs "github.com/jdholdren/sitekit/internal/errors"
	"github.com/jdholdren/sitekit/internal/session"
)

// Issues a new challenge: the answer goes into the session, the picture goes
// back to the client.
func (s Server) getCaptcha(w http.ResponseWriter, r *http.Request) error {
	challenge := captcha.NewChallenge(s.captchaLength)

	var img bytes.Buffer
	if err := challenge.WriteImage(&img); err != nil {
		return err
	}

	if err := s.sessions.Update(w, r, func(st *session.State) {
		st.Captcha = challenge.Answer()
	}); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := img.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "error writing captcha image", "err", err)
	}

	return nil
}

// checkCaptcha validates the submitted answer for this request and forgets
// the session's answer either way, so it can't be replayed.
func (s Server) checkCaptcha(w http.ResponseWriter, r *http.Request, submitted string) error {
	err := captcha.Validate(r.Context(), submitted)

	if _, ok := captcha.Current(r.Context()); ok {
		if err := s.sessions.Update(w, r, func(st *session.State) { st.Captcha = "" }); err != nil {
			slog.ErrorContext(r.Context(), "error clearing captcha", "err", err)
		}
	}

	if err == nil {
		s.metrics.RecordCaptcha("ok")
		return nil
	}

	var invalid *captcha.InvalidError
	if !errors.As(err, &invalid) {
		return err
	}
	s.metrics.RecordCaptcha(invalid.Kind.String())
	slog.InfoContext(r.Context(), "captcha rejected", "kind", invalid.Kind)

	return skerrs.E(err, http.StatusBadRequest, skerrs.Field("captcha", invalid.Message()))
}
