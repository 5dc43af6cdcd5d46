package server

import (
	"go.uber.org/zap"

	"github.com/nimblewire/fixture/internal/logging"
)

const defaultBufferSize = 4096

// Config holds the server's construction-time settings, applied through
// functional options and defaulted the way DefaultConfig fills in a
// struct-literal Config elsewhere in the corpus.
type Config struct {
	BufferSize  int
	ServerIdent string
	logger      *logging.Logger
}

// Option configures a Server at construction time.
type Option func(*Config)

// WithBufferSize sets the per-connection read buffer size.
func WithBufferSize(n int) Option {
	return func(c *Config) { c.BufferSize = n }
}

// WithServerIdent overrides the identifier the server reports in its
// Server response header.
func WithServerIdent(ident string) Option {
	return func(c *Config) { c.ServerIdent = ident }
}

// WithLogger supplies a *zap.Logger for the server's internal operational
// trace. Without this option the server logs through logging.Development().
func WithLogger(z *zap.Logger) Option {
	return func(c *Config) { c.logger = logging.New(z) }
}

func defaultConfig() Config {
	return Config{
		BufferSize:  defaultBufferSize,
		ServerIdent: "fixtureserver/1",
	}
}
