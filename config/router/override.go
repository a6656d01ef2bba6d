package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const (
	MethodOverrideField  = "_method"
	MethodOverrideHeader = "X-HTTP-Method-Override"
)

var overridableMethods = map[string]struct{}{
	http.MethodDelete: {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
}

// methodOverride lets HTML forms, which can only POST, reach DELETE/PUT/PATCH routes.
// It has to run before gin picks a route, so it wraps the engine instead of being a middleware.
// Form bodies are read under maxBytes and restored, so gin binds and size-checks them as usual.
func methodOverride(next http.Handler, maxBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method, err := overrideMethod(w, r, maxBytes)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeJSONError(w, http.StatusRequestEntityTooLarge, "Request payload too large")
				} else {
					writeJSONError(w, http.StatusBadRequest, "Unable to read request body")
				}
				return
			}
			if method != "" {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, error) {
	candidate := r.Header.Get(MethodOverrideHeader)

	if candidate == "" && r.Body != nil && isURLEncodedForm(r) {
		body, err := readBody(w, r, maxBytes)
		if err != nil {
			return "", err
		}
		// Decode errors are left for the form binding downstream to report.
		if values, err := url.ParseQuery(string(body)); err == nil {
			candidate = values.Get(MethodOverrideField)
		}
	}

	candidate = strings.ToUpper(strings.TrimSpace(candidate))
	if _, ok := overridableMethods[candidate]; !ok {
		return "", nil
	}
	return candidate, nil
}

func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	reader := r.Body
	if maxBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	body, err := io.ReadAll(reader)
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func isURLEncodedForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResult(status, message, nil).ToJSON())
}
