// Package cmd is the transport-neutral command core: a command has a name, a
// one-line usage and a Run. Chat adapters, the CLI and tests drive the same
// commands by filling Invocation.Data with their own context.
package cmd

import (
	"context"
	"errors"
)

// ErrDenied is returned by middleware that refuses to run the command.
// Callers treat it as a silent outcome, not a failure.
var ErrDenied = errors.New("command denied")

// Invocation is what a runner hands to a command.
type Invocation struct {
	Args []string
	Data any
}

// Command is a named, runnable unit.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Middleware wraps a command (guild check, staff gate, logging).
type Middleware func(Command) Command

// Apply applies middlewares in order, so the last one is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}
