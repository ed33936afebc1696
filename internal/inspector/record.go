package inspector

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Header is a single header line as logged
type Header struct {
	Name  string
	Value string
}

// Record is everything logged about one request. It lives only for the
// duration of that request.
type Record struct {
	ID        uuid.UUID
	Method    string
	Path      string
	Headers   []Header
	Body      *string // nil for methods that carry no body
	BodyBytes int     // size on the wire, before decompression
	Encoding  string
}

// newRecord captures method, path and headers of r
func newRecord(r *http.Request) *Record {
	rec := &Record{
		ID:      uuid.New(),
		Method:  r.Method,
		Path:    requestPath(r),
		Headers: orderedHeaders(r),
	}
	rec.Encoding = rec.Header("Content-Encoding")
	return rec
}

// requestPath returns the request target as the client sent it
func requestPath(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

// orderedHeaders lists Host first, then the remaining headers sorted by
// name, one entry per value
func orderedHeaders(r *http.Request) []Header {
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]Header, 0, len(names)+1)
	if r.Host != "" {
		headers = append(headers, Header{Name: "Host", Value: r.Host})
	}
	for _, name := range names {
		for _, value := range r.Header[name] {
			headers = append(headers, Header{Name: name, Value: value})
		}
	}
	return headers
}

// Header returns the first value of the named header, ignoring case
func (rec *Record) Header(name string) string {
	for _, h := range rec.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Message renders the human readable form of the record
func (rec *Record) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s request,\nPath: %s\nHeaders:\n", rec.Method, rec.Path)
	for _, h := range rec.Headers {
		fmt.Fprintf(&b, "%s: %s\n", h.Name, h.Value)
	}
	if rec.Body != nil {
		fmt.Fprintf(&b, "\nBody:\n%s\n", *rec.Body)
	}
	return b.String()
}

// headerMap groups header values by name for the structured field
func (rec *Record) headerMap() map[string][]string {
	m := make(map[string][]string, len(rec.Headers))
	for _, h := range rec.Headers {
		m[h.Name] = append(m[h.Name], h.Value)
	}
	return m
}

// write logs the record as a single INFO entry
func (rec *Record) write(log zerolog.Logger) {
	event := log.Info().
		Str("request_id", rec.ID.String()).
		Str("method", rec.Method).
		Str("path", rec.Path).
		Interface("headers", rec.headerMap())
	if rec.Body != nil {
		event = event.
			Str("body", *rec.Body).
			Int("body_bytes", rec.BodyBytes)
		if rec.Encoding != "" {
			event = event.Str("encoding", rec.Encoding)
		}
	}
	event.Msg(rec.Message())
}
