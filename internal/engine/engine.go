// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine isolates the batch orchestrator from the invocation
// contract of the external document-conversion engine. The engine is an
// external binary (pandoc by default) run once per document; alternate
// engines plug in behind the Engine interface.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrEngineNotFound marks an environment problem: the engine binary is
// missing or not invocable. Callers distinguish it from per-document
// conversion failures with errors.Is.
var ErrEngineNotFound = errors.New("conversion engine not found")

// Engine converts one source document into one destination file. A nil
// return means the destination exists with the converted content; any
// error means the item failed and the error text is its diagnostic.
type Engine interface {
	Convert(ctx context.Context, sourcePath, destPath string) error
}

// executor abstracts binary lookup and process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunCapture(ctx context.Context, name string, args []string) (stderr string, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunCapture(ctx context.Context, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

var defaultExec executor = &osExecutor{}

// Option configures the CLI engine.
type Option func(*CLI)

// WithBinary overrides the default engine binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithArgs inserts extra arguments before the source/destination pair.
func WithArgs(args ...string) Option {
	return func(c *CLI) {
		c.args = append([]string(nil), args...)
	}
}

// WithTimeout bounds each conversion. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *CLI) {
		c.timeout = d
	}
}

// CLI invokes the conversion engine as an external process:
//
//	<binary> <args...> <source> -o <dest>
//
// Stderr is captured and folded into the returned error so the
// orchestrator can report it as the item's diagnostic.
type CLI struct {
	binary  string
	args    []string
	timeout time.Duration
	exec    executor
}

// NewCLI constructs a CLI engine using defaults (pandoc, no extra args,
// no timeout).
func NewCLI(opts ...Option) *CLI {
	c := &CLI{binary: "pandoc", exec: defaultExec}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the configured engine binary name.
func (c *CLI) Binary() string { return c.binary }

// Convert runs the engine on sourcePath, writing destPath. Expected
// failure modes (missing binary, engine non-zero exit, timeout) come back
// as errors, never panics. On failure the destination may hold partial
// output; the caller must trust only the returned error, not the
// filesystem.
func (c *CLI) Convert(ctx context.Context, sourcePath, destPath string) error {
	if _, err := c.exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%w: %q not on PATH", ErrEngineNotFound, c.binary)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(c.args)+3)
	args = append(args, c.args...)
	args = append(args, sourcePath, "-o", destPath)

	stderr, err := c.exec.RunCapture(ctx, c.binary, args)
	if err == nil {
		return nil
	}

	if c.timeout > 0 && ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("converting %s: timed out after %s", sourcePath, c.timeout)
	}

	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = err.Error()
	} else {
		msg = fmt.Sprintf("%v: %s", err, msg)
	}
	return fmt.Errorf("converting %s: %s", sourcePath, msg)
}
