// Package analysis produces the derived narrative artifacts: a daily
// market brief and a local-trends report, generated by a text model
// from the day's rates and news coverage.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// ErrNoGenerators is returned when the chain has no configured backends
var ErrNoGenerators = errors.New("no text generators configured")

// Generator produces free-form text from a prompt
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chain tries each generator in order and returns the first success.
// Backend failures are logged and the next one is tried
type Chain struct {
	generators []Generator
	logger     *slog.Logger
}

// NewChain creates a new generator chain
func NewChain(generators []Generator, options ...func(*Chain)) *Chain {
	c := &Chain{
		generators: generators,
		logger:     noopLogger,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// WithChainLogger sets the logger for the chain
func WithChainLogger(logger *slog.Logger) func(*Chain) {
	return func(c *Chain) {
		c.logger = logger
	}
}

func (c *Chain) Name() string {
	return "chain"
}

// Generate runs the prompt through the chain
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	if len(c.generators) == 0 {
		return "", ErrNoGenerators
	}

	var lastErr error

	for _, g := range c.generators {
		text, err := g.Generate(ctx, prompt)
		if err != nil {
			lastErr = err

			c.logger.Warn("text generator failed, trying next",
				"generator", g.Name(),
				"err", err,
			)

			continue
		}

		return text, nil
	}

	return "", fmt.Errorf("all %d text generators failed: %w", len(c.generators), lastErr)
}
