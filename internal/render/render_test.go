package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/arcanaland/cardpress/internal/card"
)

func TestBatchParams(t *testing.T) {
	got := BatchParams("cards", "Hello ", card.White)
	want := "batch-id=cards&card-text=Hello+&card-color=white&icon=none&mechanic=none"
	if got != want {
		t.Errorf("BatchParams = %q, want %q", got, want)
	}

	// Delimiters inside card text stay inside the card-text value
	params, err := url.ParseQuery(BatchParams("cards", "a&b=c", card.Black))
	if err != nil {
		t.Fatal(err)
	}
	if params.Get("card-text") != "a&b=c" || params.Get("card-color") != "black" {
		t.Errorf("decoded params = %v", params)
	}
}

// fakeCommand writes a shell script into dir that runs body.
func fakeCommand(t *testing.T, dir, body string) []string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell renderer fixture needs /bin/sh")
	}
	script := filepath.Join(dir, "render.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return []string{"/bin/sh", script}
}

func TestExecRenderer(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.png")
	if err := imaging.Save(imaging.New(8, 6, color.NRGBA{255, 0, 0, 255}), fixture); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "files", "cards"), 0755); err != nil {
		t.Fatal(err)
	}

	r := &ExecRenderer{
		Command: fakeCommand(t, dir, `printf '%s' "$1" > args.txt; echo noise; cp fixture.png files/cards/cards_0.png`),
		Dir:     dir,
		Output:  "files/cards/cards_0.png",
		BatchID: "cards",
	}

	img, err := r.Render(context.Background(), "Hello {{1}}", card.White)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Errorf("bounds = %v", img.Bounds())
	}

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(args) != BatchParams("cards", "Hello ", card.White) {
		t.Errorf("renderer saw %q; tags must be stripped", args)
	}

	// The fixed path is consumed and no staging files remain
	entries, _ := os.ReadDir(filepath.Join(dir, "files", "cards"))
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestExecRendererNoOutput(t *testing.T) {
	dir := t.TempDir()
	r := &ExecRenderer{
		Command: fakeCommand(t, dir, "exit 0"),
		Dir:     dir,
		Output:  "out.png",
	}

	_, err := r.Render(context.Background(), "x", card.White)
	if !errors.Is(err, ErrNoOutput) {
		t.Errorf("err = %v, want ErrNoOutput", err)
	}
}

func TestExecRendererStaleOutputIgnored(t *testing.T) {
	dir := t.TempDir()
	if err := imaging.Save(imaging.New(2, 2, color.White), filepath.Join(dir, "out.png")); err != nil {
		t.Fatal(err)
	}
	r := &ExecRenderer{
		Command: fakeCommand(t, dir, "exit 0"),
		Dir:     dir,
		Output:  "out.png",
	}

	if _, err := r.Render(context.Background(), "x", card.White); !errors.Is(err, ErrNoOutput) {
		t.Errorf("stale image was reused: err = %v", err)
	}
}

func TestExecRendererFailure(t *testing.T) {
	dir := t.TempDir()
	r := &ExecRenderer{
		Command: fakeCommand(t, dir, "echo boom >&2; exit 3"),
		Dir:     dir,
		Output:  "out.png",
	}

	_, err := r.Render(context.Background(), "x", card.Black)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want stderr in message", err)
	}
}

func TestExecRendererTimeout(t *testing.T) {
	dir := t.TempDir()
	r := &ExecRenderer{
		Command: fakeCommand(t, dir, "exec sleep 5"),
		Dir:     dir,
		Output:  "out.png",
		Timeout: 100 * time.Millisecond,
	}

	start := time.Now()
	_, err := r.Render(context.Background(), "x", card.White)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Error("timeout did not stop the renderer")
	}
}

func TestExecRendererTimeoutKillsChildren(t *testing.T) {
	dir := t.TempDir()
	r := &ExecRenderer{
		// The shell forks sleep, which keeps the pipes open
		Command: fakeCommand(t, dir, "sleep 4; echo done"),
		Dir:     dir,
		Output:  "out.png",
		Timeout: 100 * time.Millisecond,
	}

	start := time.Now()
	_, err := r.Render(context.Background(), "x", card.White)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Render returned after %s; child process outlived the timeout", elapsed)
	}
}

func TestExecRendererNotConfigured(t *testing.T) {
	r := &ExecRenderer{}
	if _, err := r.Render(context.Background(), "x", card.White); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestFunc(t *testing.T) {
	var gotText string
	var r Renderer = Func(func(ctx context.Context, text string, c card.Color) (image.Image, error) {
		gotText = text
		return imaging.New(1, 1, color.Black), nil
	})
	if _, err := r.Render(context.Background(), "abc", card.White); err != nil || gotText != "abc" {
		t.Errorf("Func.Render: text %q, err %v", gotText, err)
	}
}
