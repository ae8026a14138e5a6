// Package render drives the external card renderer.
//
// The renderer is a black-box command that takes a batch parameter string
// and writes exactly one image to a fixed path. [ExecRenderer] hides that
// fixed path from the rest of the pipeline: each call runs the command,
// moves the output to a unique staging file, decodes it and returns the
// image in memory.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/arcanaland/cardpress/internal/card"
)

// Renderer produces the raw card image for a card body.
type Renderer interface {
	Render(ctx context.Context, text string, color card.Color) (image.Image, error)
}

// waitDelay bounds how long Render waits for the output pipes to close once
// the command has been killed.
const waitDelay = 500 * time.Millisecond

// ErrNoOutput is returned when the renderer exits without writing its
// output image.
var ErrNoOutput = errors.New("renderer produced no image")

// BatchParams encodes the renderer's single batch argument. Feature flags
// the pipeline does not use are pinned to "none".
func BatchParams(batchID, text string, color card.Color) string {
	pairs := [][2]string{
		{"batch-id", batchID},
		{"card-text", text},
		{"card-color", string(color)},
		{"icon", "none"},
		{"mechanic", "none"},
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p[0] + "=" + url.QueryEscape(p[1])
	}
	return strings.Join(parts, "&")
}

// ExecRenderer runs an external command per card.
type ExecRenderer struct {
	Command []string      // Program and leading arguments, e.g. php generator.php
	Dir     string        // Working directory of the command
	Output  string        // Image written by the command, relative to Dir
	BatchID string        // batch-id parameter
	Timeout time.Duration // Zero waits forever
	Stderr  io.Writer     // Receives the command's stderr; nil captures it into errors

	mu sync.Mutex // serialises use of the fixed output path
}

// Render runs the command for one card and returns the decoded image.
// Control tags are stripped from text before it reaches the command.
func (r *ExecRenderer) Render(ctx context.Context, text string, color card.Color) (image.Image, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("renderer command not configured")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	output := r.outputPath()
	// A stale image from an earlier crash must not be mistaken for ours
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error clearing renderer output: %w", err)
	}

	args := append(append([]string{}, r.Command[1:]...), BatchParams(r.BatchID, card.Sanitize(text), color))
	cmd := exec.CommandContext(ctx, r.Command[0], args...)
	cmd.Dir = r.Dir
	killGroup(cmd)
	// Descendants holding the output pipes must not outlive the deadline
	cmd.WaitDelay = waitDelay
	cmd.Stdout = io.Discard

	var errBuf bytes.Buffer
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	} else {
		cmd.Stderr = &errBuf
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("renderer timed out after %s", r.Timeout)
		}
		return nil, fmt.Errorf("renderer: %v: %s", err, strings.TrimSpace(errBuf.String()))
	}

	return consume(output)
}

func (r *ExecRenderer) outputPath() string {
	if filepath.IsAbs(r.Output) || r.Dir == "" {
		return r.Output
	}
	return filepath.Join(r.Dir, r.Output)
}

// consume moves the fixed-path image to a unique staging file next to it,
// freeing the fixed path, then decodes and removes the staged copy.
func consume(output string) (image.Image, error) {
	staged := filepath.Join(filepath.Dir(output), ".staged-"+uuid.NewString()+filepath.Ext(output))
	if err := os.Rename(output, staged); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoOutput, output)
		}
		return nil, fmt.Errorf("error staging renderer output: %w", err)
	}
	defer os.Remove(staged)

	img, err := imaging.Open(staged)
	if err != nil {
		return nil, fmt.Errorf("error decoding renderer output: %w", err)
	}
	return img, nil
}

// Func adapts a function to the Renderer interface.
type Func func(ctx context.Context, text string, color card.Color) (image.Image, error)

// Render calls f.
func (f Func) Render(ctx context.Context, text string, color card.Color) (image.Image, error) {
	return f(ctx, text, color)
}
