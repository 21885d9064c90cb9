// Package serverutil is the plumbing shared by HTTP handlers: serialized
// responses, error-returning handlers and request logging.
package serverutil

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	skerrs "github.com/jdholdren/sitekit/internal/errors"
	"github.com/jdholdren/sitekit/logger"
)

// Format is a wire encoding a response can be serialized to.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// ContentType is the media type sent for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXML:
		return "application/xml"
	case FormatYAML:
		return "application/x-yaml"
	default:
		return "application/json"
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) error {
	return write(w, FormatJSON, status, data)
}

// WriteSerialized writes data in whichever format the request asked for. See [Negotiate].
func WriteSerialized(w http.ResponseWriter, r *http.Request, status int, data any) error {
	return write(w, Negotiate(r), status, data)
}

func write(w http.ResponseWriter, f Format, status int, data any) error {
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(status)

	var err error
	switch f {
	case FormatXML:
		if _, err = io.WriteString(w, xml.Header); err == nil {
			err = xml.NewEncoder(w).Encode(data)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err = enc.Encode(data); err == nil {
			err = enc.Close()
		}
	default:
		err = json.NewEncoder(w).Encode(data)
	}
	if err != nil {
		return fmt.Errorf("error encoding %s response: %s", f, err)
	}

	return nil
}

// Negotiate picks the response format: an explicit ?format= wins, then the
// first recognised Accept type, then JSON.
func Negotiate(r *http.Request) Format {
	switch Format(strings.ToLower(r.URL.Query().Get("format"))) {
	case FormatJSON:
		return FormatJSON
	case FormatXML:
		return FormatXML
	case FormatYAML:
		return FormatYAML
	}

	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case "application/json":
			return FormatJSON
		case "application/xml", "text/xml":
			return FormatXML
		case "application/x-yaml", "application/yaml", "text/yaml":
			return FormatYAML
		}
	}

	return FormatJSON
}

// Validator is a surface that can validate itself and return an error
// if something is wrong.
type Validator interface {
	Validate() error
}

// DecodeValid decodes a request and then validates it.
func DecodeValid[V Validator](r io.Reader) (V, error) {
	var v V
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("error decoding request: %w", err)
	}
	if err := v.Validate(); err != nil {
		return v, fmt.Errorf("error validating request: %w", err)
	}

	return v, nil
}

const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware tags the request with an id, echoes it back to the
// client and attaches it to everything logged with the request's context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logger.Ctx(r.Context(), slog.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		slog.InfoContext(ctx, "request received", "method", r.Method, "path", r.URL.Path)
		start := time.Now()

		writer := &respCodeWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(writer, r)

		slog.InfoContext(ctx, "request completed",
			"method", r.Method,
			"url", r.URL.String(),
			"duration", time.Since(start),
			"status_code", writer.code,
		)
	})
}

// To trap the response status code for logging later.
type respCodeWriter struct {
	http.ResponseWriter
	code int
}

func (w *respCodeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// HandlerFuncE is a modified type of [http.HandlerFunc] that returns an error.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFuncE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a structured error, or coerce it to one
	sErr := &skerrs.Error{}
	if !errors.As(err, &sErr) {
		slog.ErrorContext(r.Context(), "unstructured handler error", "err", err)
		sErr = skerrs.E(http.StatusInternalServerError, "internal server error")
	}

	if err := WriteJSON(w, sErr.Status, sErr); err != nil {
		slog.ErrorContext(r.Context(), "error writing response", "error", err)
	}
}

// ErrRouter is a newtype around a mux router that allows attaching handlers that return errors.
type ErrRouter struct {
	*mux.Router
}

func (r ErrRouter) HandleFuncE(path string, f HandlerFuncE) *mux.Route {
	return r.Handle(path, f)
}
