package server

import (
	"log/slog"

	"github.com/paralelo-ve/paralelo/server/config"
)

type Option func(s *Server)

// WithLogger sets the request logger for the API server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig overrides the default server configuration.
// A nil config keeps the defaults
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		if c != nil {
			s.config = c
		}
	}
}
