package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   Level
		want zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: FormatJSON, Level: LevelInfo}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("path", "/foo").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "/foo", entry["path"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriterPrettyExcludesRecordFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: FormatPretty, NoColor: true, DisableTimestamp: true}, &buf)

	log.Info().Str("body", "secret-body").Str("method", "POST").Msg("POST request")

	out := buf.String()
	assert.Contains(t, out, "POST request")
	assert.Contains(t, out, "method=POST")
	assert.NotContains(t, out, "secret-body")
}

func TestNewWithWriterDoesNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: FormatJSON}, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Info().Str("payload", strings.Repeat("x", 512)).Msg("line")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1000)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "corrupt line: %q", line)
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqlogger.log")

	log, closer, err := New(Config{Format: FormatJSON, Output: "file", File: path}, io.Discard, io.Discard)
	require.NoError(t, err)

	log.Info().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}

func TestNewFileOutputWithoutPath(t *testing.T) {
	_, _, err := New(Config{Output: "file"}, io.Discard, io.Discard)
	assert.Error(t, err)
}

func TestNewSelectsStream(t *testing.T) {
	var stdout, stderr bytes.Buffer

	log, _, err := New(Config{Format: FormatJSON}, &stdout, &stderr)
	require.NoError(t, err)
	log.Info().Msg("to stdout")

	log, _, err = New(Config{Format: FormatJSON, Output: "stderr"}, &stdout, &stderr)
	require.NoError(t, err)
	log.Info().Msg("to stderr")

	assert.Contains(t, stdout.String(), "to stdout")
	assert.NotContains(t, stdout.String(), "to stderr")
	assert.Contains(t, stderr.String(), "to stderr")
}

func TestNewWithWriterPrettyWithoutTerminalHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Format: FormatPretty}, &buf)

	log.Info().Str("method", "POST").Msg("POST request,\nPath: /bar")

	assert.Contains(t, buf.String(), "POST request,")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewWithWriterPrettyFileHasNoColor(t *testing.T) {
	file, err := os.Create(filepath.Join(t.TempDir(), "pretty.log"))
	require.NoError(t, err)
	defer file.Close()

	log := NewWithWriter(Config{Format: FormatPretty}, file)
	log.Info().Msg("piped")

	data, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "piped")
	assert.NotContains(t, string(data), "\x1b[")
}
