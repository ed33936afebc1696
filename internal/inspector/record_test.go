package inspector

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://hooks.local/x", nil)
	req.Header.Set("Zeta", "last")
	req.Header.Set("Accept", "*/*")
	req.Header.Add("X-Multi", "one")
	req.Header.Add("X-Multi", "two")

	rec := newRecord(req)

	assert.Equal(t, []Header{
		{Name: "Host", Value: "hooks.local"},
		{Name: "Accept", Value: "*/*"},
		{Name: "X-Multi", Value: "one"},
		{Name: "X-Multi", Value: "two"},
		{Name: "Zeta", Value: "last"},
	}, rec.Headers)

	assert.Equal(t, "hooks.local", rec.Header("host"))
	assert.Equal(t, "one", rec.Header("x-multi"))
	assert.Equal(t, "", rec.Header("Missing"))
}

func TestRecordMessage(t *testing.T) {
	body := "hello"
	rec := &Record{
		Method:  http.MethodPost,
		Path:    "/bar",
		Headers: []Header{{Name: "Host", Value: "localhost:8080"}, {Name: "Content-Length", Value: "5"}},
		Body:    &body,
	}

	want := "POST request,\nPath: /bar\nHeaders:\nHost: localhost:8080\nContent-Length: 5\n\nBody:\nhello\n"
	assert.Equal(t, want, rec.Message())

	rec.Method = http.MethodGet
	rec.Body = nil
	assert.Equal(t, "GET request,\nPath: /bar\nHeaders:\nHost: localhost:8080\nContent-Length: 5\n", rec.Message())
}

func TestRequestPathFallsBackToURL(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com/a/b?q=1", nil)
	require.NoError(t, err)

	assert.Equal(t, "/a/b?q=1", requestPath(req))
}

func TestAcknowledgment(t *testing.T) {
	assert.Equal(t, "PUT request for /x?y=z", Acknowledgment("PUT", "/x?y=z"))
}

func TestReadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello world"))
	req.Header.Set("Content-Length", "5")

	body, err := readBody(req)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Length", "-3")
	_, err = readBody(req)
	assert.True(t, errors.Is(err, ErrInvalidContentLength))
}

func TestDecodeBody(t *testing.T) {
	text, err := decodeBody([]byte("plain"), "")
	require.NoError(t, err)
	assert.Equal(t, "plain", text)

	text, err = decodeBody(gzipBytes(t, "zipped ✓"), "gzip")
	require.NoError(t, err)
	assert.Equal(t, "zipped ✓", text)

	// other encodings are passed through undecoded
	text, err = decodeBody([]byte("raw"), "br")
	require.NoError(t, err)
	assert.Equal(t, "raw", text)

	text, err = decodeBody(nil, "gzip")
	require.NoError(t, err)
	assert.Equal(t, "", text)

	_, err = decodeBody([]byte{0x1f, 0x8b, 0x08}, "gzip")
	assert.ErrorIs(t, err, ErrDecompress)

	_, err = decodeBody([]byte{0xc3, 0x28}, "")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestBodyErrorReason(t *testing.T) {
	assert.Equal(t, "short_body", bodyErrorReason(ErrShortBody))
	assert.Equal(t, "unknown", bodyErrorReason(errors.New("boom")))
}

func TestNewRecordEncodingIgnoresHeaderCase(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/gz", nil)
	req.Header["content-encoding"] = []string{"gzip"}

	rec := newRecord(req)

	assert.Equal(t, "gzip", rec.Encoding)
	assert.Equal(t, "gzip", rec.Header("Content-Encoding"))
}
