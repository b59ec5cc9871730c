package httpserver

import (
	"log/slog"
	"net"
	"time"
)

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the TCP address to listen on. Empty is ignored.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithListener serves on an already bound listener instead of Addr.
func WithListener(l net.Listener) Option {
	return func(s *Server) { s.listener = l }
}

// WithReadHeaderTimeout bounds reading request headers. Non-positive values
// are ignored by this and the other timeout options.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) { setIfPositive(&s.readHeaderTimeout, d) }
}

func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { setIfPositive(&s.readTimeout, d) }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { setIfPositive(&s.writeTimeout, d) }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { setIfPositive(&s.idleTimeout, d) }
}

// WithShutdownTimeout bounds how long in-flight requests get to finish.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { setIfPositive(&s.shutdownTimeout, d) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
