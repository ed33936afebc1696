// Package inspector answers every request with a fixed acknowledgment after
// logging its method, path, headers and decoded body.
package inspector

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Observer is notified about every request the inspector handles
type Observer interface {
	RequestStarted()
	RequestFinished(method string, status int, duration time.Duration, bodyBytes int)
	BodyError(reason string)
}

// Options configures an Inspector
type Options struct {
	// Concurrent lets requests be handled in parallel. By default they are
	// handled one at a time, in arrival order.
	Concurrent bool
	// Observer receives per-request metrics, may be nil
	Observer Observer
}

// methodHandler handles one HTTP method and returns the body size read from the wire
type methodHandler func(w http.ResponseWriter, r *http.Request) int

// Inspector logs incoming requests and acknowledges them
type Inspector struct {
	log      zerolog.Logger
	observer Observer
	mu       sync.Mutex
	serial   bool
	handlers map[string]methodHandler
}

// New creates an Inspector writing its records to log
func New(log zerolog.Logger, opts Options) *Inspector {
	in := &Inspector{
		log:      log,
		observer: opts.Observer,
		serial:   !opts.Concurrent,
	}
	in.handlers = map[string]methodHandler{
		http.MethodGet:  in.handleGet,
		http.MethodHead: in.handleHead,
		http.MethodPost: in.handleWithBody,
		http.MethodPut:  in.handleWithBody,
	}
	return in
}

// ServeHTTP implements the http.Handler interface
func (in *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if in.serial {
		in.mu.Lock()
		defer in.mu.Unlock()
	}

	requestStart := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	bodyBytes := 0

	if in.observer != nil {
		in.observer.RequestStarted()
		defer func() {
			in.observer.RequestFinished(r.Method, sw.status, time.Since(requestStart), bodyBytes)
		}()
	}

	handler, ok := in.handlers[r.Method]
	if !ok {
		in.handleNotImplemented(sw, r)
		return
	}
	bodyBytes = handler(sw, r)

	in.log.Debug().
		Str("method", r.Method).
		Str("path", requestPath(r)).
		Int("status_code", sw.status).
		Int64("duration_ms", time.Since(requestStart).Milliseconds()).
		Msg("Request completed")
}

func (in *Inspector) handleGet(w http.ResponseWriter, r *http.Request) int {
	rec := newRecord(r)
	rec.write(in.log)
	writeAck(w, rec, true)
	return 0
}

func (in *Inspector) handleHead(w http.ResponseWriter, r *http.Request) int {
	rec := newRecord(r)
	rec.write(in.log)
	writeAck(w, rec, false)
	return 0
}

// handleWithBody serves POST and PUT
func (in *Inspector) handleWithBody(w http.ResponseWriter, r *http.Request) int {
	rec := newRecord(r)

	raw, err := readBody(r)
	if err != nil {
		in.handleBodyError(w, rec, err)
		return 0
	}
	rec.BodyBytes = len(raw)

	text, err := decodeBody(raw, rec.Encoding)
	if err != nil {
		in.handleBodyError(w, rec, err)
		return rec.BodyBytes
	}
	rec.Body = &text

	rec.write(in.log)
	writeAck(w, rec, true)
	return rec.BodyBytes
}
