package inspector

import (
	"fmt"
	"io"
	"net/http"
)

// statusWriter remembers the status code written through it
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Acknowledgment returns the response body sent for a handled request
func Acknowledgment(method, path string) string {
	return fmt.Sprintf("%s request for %s", method, path)
}

// writeAck sends the 200 acknowledgment, with or without a body
func writeAck(w http.ResponseWriter, rec *Record, withBody bool) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if withBody {
		io.WriteString(w, Acknowledgment(rec.Method, rec.Path))
	}
}

// handleNotImplemented answers methods the inspector has no handler for
func (in *Inspector) handleNotImplemented(w http.ResponseWriter, r *http.Request) {
	in.log.Debug().
		Str("method", r.Method).
		Str("path", requestPath(r)).
		Msg("Unsupported method")
	http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
}

// handleBodyError rejects a request whose body could not be read or decoded.
// The connection is closed since unread body bytes may remain on it.
func (in *Inspector) handleBodyError(w http.ResponseWriter, rec *Record, err error) {
	reason := bodyErrorReason(err)

	in.log.Error().
		Err(err).
		Str("request_id", rec.ID.String()).
		Str("method", rec.Method).
		Str("path", rec.Path).
		Str("reason", reason).
		Msg("Failed to read request body")

	if in.observer != nil {
		in.observer.BodyError(reason)
	}

	w.Header().Set("Connection", "close")
	http.Error(w, err.Error(), http.StatusBadRequest)
}
