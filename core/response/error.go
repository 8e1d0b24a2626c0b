package response

import (
	"net/http"

	"github.com/dmitrymomot/authkit/core/handler"
)

// Error returns a handler response that propagates the given error to the
// router's error handler, which maps it onto the wire (see HTTPError).
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
