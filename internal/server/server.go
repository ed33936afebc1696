package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Server binds a listener and serves a handler on it until stopped
type Server struct {
	name     string
	log      zerolog.Logger
	listener net.Listener
	http     *http.Server
}

// New creates a server for handler; name is used in log lines
func New(name string, handler http.Handler, log zerolog.Logger) *Server {
	return &Server{
		name: name,
		log:  log,
		http: &http.Server{
			Handler:  handler,
			ErrorLog: zerologErrorLog(log),
		},
	}
}

// Start binds address. Bind errors are returned here, before any serving starts.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("error binding %s listener on %q: %w", s.name, address, err)
	}
	s.listener = listener
	s.http.Addr = listener.Addr().String()
	return nil
}

// Addr returns the bound address, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// URL returns the base http URL of the bound listener. Wildcard binds
// are reported on the loopback address.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	addr, ok := s.listener.Addr().(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("http://%v", s.listener.Addr())
	}
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(addr.Port))
}

// Serve blocks serving connections until Shutdown is called
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server not started")
	}
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server error: %w", s.name, err)
	}
	return nil
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests before closing them. The listener is released even
// when Serve never ran.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.listener != nil {
		// Serve closes it too; a second close only reports net.ErrClosed
		defer s.listener.Close()
	}

	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Warn().Err(err).Str("server", s.name).Msg("Graceful shutdown timed out, closing connections")
		return s.http.Close()
	}
	return nil
}
