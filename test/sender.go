package main

import (
	"bytes"
	"flag"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

// sender fires one request of each kind at a running reqlogger so the
// records can be checked by eye.
func main() {
	target := flag.String("target", "http://localhost:8080", "Base URL of the request logger")
	payload := flag.String("payload", `{"event":"ping","source":"sender"}`, "Body sent with POST and PUT")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	client := &http.Client{}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	zw.Write([]byte(*payload))
	zw.Close()

	requests := []struct {
		method   string
		path     string
		body     []byte
		encoding string
	}{
		{method: http.MethodGet, path: "/foo"},
		{method: http.MethodHead, path: "/foo"},
		{method: http.MethodPost, path: "/bar", body: []byte(*payload)},
		{method: http.MethodPut, path: "/baz", body: compressed.Bytes(), encoding: "gzip"},
		{method: http.MethodPost, path: "/empty", body: []byte{}},
		{method: http.MethodDelete, path: "/unsupported"},
	}

	failed := false
	for _, r := range requests {
		var body io.Reader
		if r.body != nil {
			body = bytes.NewReader(r.body)
		}
		req, err := http.NewRequest(r.method, *target+r.path, body)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build request")
		}
		if r.body != nil {
			req.ContentLength = int64(len(r.body))
			req.Header.Set("Content-Length", strconv.Itoa(len(r.body)))
		}
		if r.encoding != "" {
			req.Header.Set("Content-Encoding", r.encoding)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Error().Err(err).Str("method", r.method).Str("path", r.path).Msg("Request failed")
			failed = true
			continue
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		log.Info().
			Str("method", r.method).
			Str("path", r.path).
			Int("status_code", resp.StatusCode).
			Str("content_type", resp.Header.Get("Content-Type")).
			Str("body", string(respBody)).
			Msg("Response received")
	}

	if failed {
		os.Exit(1)
	}
}
