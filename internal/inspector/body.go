package inspector

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

// Errors returned while reading or decoding a request body
var (
	ErrMissingContentLength = errors.New("missing Content-Length")
	ErrInvalidContentLength = errors.New("invalid Content-Length")
	ErrShortBody            = errors.New("body shorter than Content-Length")
	ErrDecompress           = errors.New("gzip decompression failed")
	ErrInvalidUTF8          = errors.New("body is not valid UTF-8")
)

// readBody reads exactly the number of bytes the Content-Length header declares
func readBody(r *http.Request) ([]byte, error) {
	raw := r.Header.Get("Content-Length")
	if raw == "" {
		return nil, ErrMissingContentLength
	}
	length, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || length < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentLength, raw)
	}
	if length == 0 {
		return []byte{}, nil
	}
	if r.Body == nil {
		return nil, fmt.Errorf("%w: got 0 of %d bytes", ErrShortBody, length)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, length))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortBody, err)
	}
	if int64(len(body)) != length {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortBody, len(body), length)
	}
	return body, nil
}

// decodeBody turns the wire bytes into text, gunzipping first when the
// encoding is exactly "gzip"
func decodeBody(raw []byte, encoding string) (string, error) {
	data := raw
	if encoding == "gzip" && len(raw) > 0 {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		defer zr.Close()

		data, err = io.ReadAll(zr)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecompress, err)
		}
	}

	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// bodyErrorReason maps a body error onto a metrics label
func bodyErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingContentLength):
		return "missing_content_length"
	case errors.Is(err, ErrInvalidContentLength):
		return "invalid_content_length"
	case errors.Is(err, ErrShortBody):
		return "short_body"
	case errors.Is(err, ErrDecompress):
		return "decompress"
	case errors.Is(err, ErrInvalidUTF8):
		return "invalid_utf8"
	default:
		return "unknown"
	}
}
