package server

import (
	"log"
	"strings"

	"github.com/rs/zerolog"
)

// logWriter forwards net/http's internal error lines to zerolog
type logWriter struct {
	log zerolog.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Warn().Msg(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func zerologErrorLog(l zerolog.Logger) *log.Logger {
	return log.New(logWriter{log: l.With().Str("component", "http").Logger()}, "", 0)
}
