package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"masterboxer.com/social-feed/apperror"
)

// Normalize rewrites every error response (status >= 400) into the
// {"status","message","errors"} envelope. Successful responses stream
// through untouched.
func Normalize(log *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			if !cw.capturing {
				if !cw.wroteHeader {
					w.WriteHeader(http.StatusOK)
				}
				return
			}

			envelope := normalizeBody(cw.status, cw.buf.Bytes(), func(text string) {
				log.Warnw("plain text error response", "method", r.Method, "path", r.URL.Path, "status", cw.status, "body", text)
			})

			h := w.Header()
			h.Del("Content-Length")
			h.Del("X-Content-Type-Options")
			h.Set("Content-Type", "application/json")
			w.WriteHeader(cw.status)
			json.NewEncoder(w).Encode(envelope)
		})
	}
}

func normalizeBody(status int, body []byte, onText func(string)) *apperror.HTTPError {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return textEnvelope(status, string(body), onText)
	}

	var parsed map[string]json.RawMessage
	switch v := decoded.(type) {
	case nil:
		return textEnvelope(status, "", onText)
	case string:
		return textEnvelope(status, v, onText)
	case map[string]any:
		if err := json.Unmarshal(body, &parsed); err != nil {
			return textEnvelope(status, string(body), onText)
		}
	default:
		return textEnvelope(status, string(body), onText)
	}

	message := stringField(parsed, "message")
	if message == "" {
		message = stringField(parsed, "error")
	}
	if message == "" {
		message = http.StatusText(status)
	}

	envelope := apperror.New(status, message)
	if raw, ok := parsed["errors"]; ok {
		var fieldErrors []apperror.FieldError
		if json.Unmarshal(raw, &fieldErrors) == nil && len(fieldErrors) > 0 {
			envelope.Errors = fieldErrors
		}
	}
	return envelope
}

func textEnvelope(status int, text string, onText func(string)) *apperror.HTTPError {
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(status)
	}
	onText(text)
	return apperror.New(status, text)
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// captureWriter passes success responses straight through and buffers the
// body of error responses so it can be rewritten.
type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	capturing   bool
	buf         bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true
	cw.status = code
	if code >= http.StatusBadRequest {
		cw.capturing = true
		return
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.capturing {
		return cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) Flush() {
	if cw.capturing {
		return
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
