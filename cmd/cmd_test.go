package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/generator"
	"github.com/arcanaland/cardpress/internal/render"
)

// writeConfig writes a config file whose paths all live under dir.
func writeConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
[paths]
cards = %q
output = %q
decks = %q
custom_images = %q
assets = %q
font = ""
%s`,
		filepath.Join(dir, "cards"),
		filepath.Join(dir, "output"),
		filepath.Join(dir, "decks"),
		filepath.Join(dir, "custom_img"),
		filepath.Join(dir, "img"),
		extra)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		configPath = ""
		verbose = false
	})
	err := Execute(context.Background())
	return out.String(), err
}

func TestDeckInitListValidate(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	t.Setenv(config.DeckEnv, "")

	if _, err := execute(t, "--config", cfg, "deck", "init", "party"); err != nil {
		t.Fatalf("deck init: %v", err)
	}
	if _, err := execute(t, "--config", cfg, "deck", "init", "party"); err == nil {
		t.Error("second deck init should fail")
	}

	out, err := execute(t, "--config", cfg, "deck", "ls")
	if err != nil {
		t.Fatalf("deck ls: %v", err)
	}
	if !strings.Contains(out, "party (0 white, 0 black)") {
		t.Errorf("deck ls output:\n%s", out)
	}

	if _, err := execute(t, "--config", cfg, "deck", "set-default", "party"); err != nil {
		t.Fatalf("set-default: %v", err)
	}
	out, _ = execute(t, "--config", cfg, "deck", "ls")
	if !strings.Contains(out, "* party") || !strings.Contains(out, "[DEFAULT]") {
		t.Errorf("default deck not marked:\n%s", out)
	}

	// Validate picks the default deck
	out, err = execute(t, "--config", cfg, "validate")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "is valid") || !strings.Contains(out, "deck has no cards") {
		t.Errorf("validate output:\n%s", out)
	}
}

func TestSetDefaultUsesConfiguredSchema(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	t.Setenv(config.DeckEnv, "")
	if _, err := execute(t, "--config", cfg, "deck", "init", "party"); err != nil {
		t.Fatalf("deck init: %v", err)
	}

	cfg = writeConfig(t, dir, "\n[metadata]\nschema = \"wide\"\n")
	if _, err := execute(t, "--config", cfg, "deck", "set-default", "party"); err == nil {
		t.Error("set-default should reject an unknown configured schema")
	}
}

func TestValidateReportsErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	deckDir := filepath.Join(dir, "cards", "deck_bad")
	if err := os.MkdirAll(deckDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deckDir, "white.txt"), []byte("A {{3}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfg, "validate", deckDir)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out, "black.txt not found") {
		t.Errorf("validate output:\n%s", out)
	}
}

func TestGenerate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("renderer fixture needs /bin/sh")
	}
	dir := t.TempDir()

	// The fake renderer copies a fixture image, failing for cards containing "boom"
	script := filepath.Join(dir, "render.sh")
	body := "#!/bin/sh\ncase \"$1\" in *boom*) exit 1;; esac\nmkdir -p out && cp \"$0.png\" out/card.png\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	if err := writeFixture(script + ".png"); err != nil {
		t.Fatal(err)
	}

	cfg := writeConfig(t, dir, fmt.Sprintf(`
[renderer]
command = ["/bin/sh", %q]
dir = %q
output = "out/card.png"
batch_id = "cards"
timeout = "10s"
`, script, dir))

	deckDir := filepath.Join(dir, "cards", "deck_party")
	if err := os.MkdirAll(deckDir, 0755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(deckDir, "white.txt"), []byte("Hello\nboom\nWorld\n"), 0644)
	os.WriteFile(filepath.Join(deckDir, "black.txt"), []byte("Why?\n"), 0644)

	manifest := filepath.Join(dir, "run.json")
	out, err := execute(t, "--config", cfg, "generate", "--deck", "party", "--manifest", manifest)
	if !errors.Is(err, generator.ErrIncomplete) {
		t.Fatalf("generate err = %v, want ErrIncomplete\n%s", err, out)
	}
	if !strings.Contains(out, "[!] Error generating card: boom - white") {
		t.Errorf("report:\n%s", out)
	}

	for _, name := range []string{"white/card_0.png", "white/card_1.png", "black/card_0.png"} {
		if _, err := os.Stat(filepath.Join(dir, "output", name)); err != nil {
			t.Errorf("missing %s", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "decks", "deck_party.zip")); err != nil {
		t.Errorf("archive not published: %v", err)
	}

	summary, err := generator.ReadManifest(manifest)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	skipped := summary.Skipped()
	if len(summary.Results) != 4 || len(skipped) != 1 || skipped[0].Text != "boom" {
		t.Errorf("manifest results = %+v", summary.Results)
	}
}

// writeFixture writes a small card image to path.
func writeFixture(path string) error {
	return imaging.Save(imaging.New(20, 28, color.NRGBA{200, 200, 200, 255}), path)
}

func TestGeneratorOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Font = filepath.Join(t.TempDir(), "missing.otf")

	opts, err := generatorOptions(cfg)
	if err != nil {
		t.Fatalf("generatorOptions: %v", err)
	}
	r, ok := opts.Renderer.(*render.ExecRenderer)
	if !ok {
		t.Fatalf("renderer = %T", opts.Renderer)
	}
	if r.Output != "files/cards/cards_0.png" || r.BatchID != "cards" || r.Timeout.Minutes() != 2 {
		t.Errorf("renderer = %+v", r)
	}
	if opts.Face == nil {
		t.Error("missing font should fall back to the embedded face")
	}

	cfg.Metadata.Schema = "wide"
	if _, err := generatorOptions(cfg); err == nil {
		t.Error("expected error for unknown schema")
	}

	cfg = config.Default()
	cfg.Renderer.Command = nil
	if _, err := generatorOptions(cfg); err == nil {
		t.Error("expected error for missing renderer command")
	}
}
