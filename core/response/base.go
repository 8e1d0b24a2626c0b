package response

import (
	"net/http"

	"github.com/dmitrymomot/authkit/core/handler"
)

// String creates a text/plain response with 200 OK status.
func String(content string) handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

// StringWithStatus creates a text/plain response with custom status code.
func StringWithStatus(content string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if content != "" {
			_, err := w.Write([]byte(content))
			return err
		}
		return nil
	}
}

// Redirect creates a 303 See Other redirect response.
func Redirect(location string) handler.Response {
	return RedirectWithStatus(location, http.StatusSeeOther)
}

// RedirectWithStatus creates a redirect response with custom status code.
func RedirectWithStatus(location string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, location, status)
		return nil
	}
}
