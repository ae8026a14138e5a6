// Package generator runs the card generation pipeline for one deck.
//
// A run reads the deck once, then renders, decorates and writes every card
// of both colors in source order, and finally bundles the output tree into
// the deck archive. A failure on one card is recorded in its CardResult and
// the run continues with the next card.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/image/font"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/output"
	"github.com/arcanaland/cardpress/internal/overlay"
	"github.com/arcanaland/cardpress/internal/render"
)

// Options configures a Generator.
type Options struct {
	DeckDir    string      // Deck source directory (white.txt, black.txt, info.txt)
	Schema     deck.Schema // Info file layout; empty means full
	OutputRoot string
	ArchiveDir string

	Renderer  render.Renderer
	Layout    overlay.Layout
	Face      font.Face // Nil uses the embedded font
	CustomDir string
	AssetDir  string

	// PreserveIndex names outputs after the source line position, leaving
	// gaps for skipped cards. By default indices are contiguous.
	PreserveIndex bool
	// Clean clears generated cards of earlier runs before generating.
	Clean bool

	Logger *log.Logger // Diagnostics; nil discards
	Out    io.Writer   // Progress report; nil discards
}

func (o *Options) validate() error {
	if o.DeckDir == "" {
		return errors.New("deck directory is required")
	}
	if o.OutputRoot == "" {
		return errors.New("output root is required")
	}
	if o.ArchiveDir == "" {
		return errors.New("archive directory is required")
	}
	if o.Renderer == nil {
		return errors.New("renderer is required")
	}
	if o.Schema == "" {
		o.Schema = deck.SchemaFull
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Generator drives one deck through the pipeline.
type Generator struct {
	opts   Options
	stage  Stage
	report *reporter
}

// New returns a Generator for opts.
func New(opts Options) (*Generator, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Generator{
		opts:   opts,
		stage:  StageInit,
		report: newReporter(opts.Out),
	}, nil
}

// Stage returns the current stage.
func (g *Generator) Stage() Stage {
	return g.stage
}

func (g *Generator) enter(s Stage) {
	g.stage = s
	g.opts.Logger.Debug("stage", "stage", s)
}

// Run executes the pipeline. The returned Summary is non-nil whenever the
// deck could be read, even if the run is later interrupted. Skipped cards do
// not make Run fail; check Summary.Err for that.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	if g.stage != StageInit {
		return nil, errors.New("generator already ran")
	}
	logger := g.opts.Logger

	summary := &Summary{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	defer func() {
		summary.Stage = g.stage
		summary.Finished = time.Now()
	}()

	g.enter(StageReading)
	d, err := deck.LoadDeck(g.opts.DeckDir, g.opts.Schema)
	if err != nil {
		return nil, err
	}

	// Cleaned only once the deck is readable, so a fatal run keeps the last output
	if g.opts.Clean {
		if err := output.Clean(g.opts.OutputRoot); err != nil {
			return nil, err
		}
	}

	summary.Deck = d.Name
	if d.MetaErr != nil {
		logger.Warn("ignoring info file", "deck", d.Name, "err", d.MetaErr)
	}
	logger.Info("loaded deck", "deck", d.Name, "white", len(d.White), "black", len(d.Black), "run", summary.RunID)
	g.report.plan(d)

	proc := &overlay.Processor{
		Layout:    g.opts.Layout,
		Meta:      d.Meta,
		Face:      g.opts.Face,
		CustomDir: g.opts.CustomDir,
		AssetDir:  g.opts.AssetDir,
	}

	for _, c := range card.Colors {
		g.enter(generatingStage(c))
		next := 0
		for pos, cd := range d.Cards(c) {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			index := next
			if g.opts.PreserveIndex {
				index = pos
			}
			res := CardResult{Color: c, Position: pos, Index: index, Text: cd.Raw}

			path, err := g.generate(ctx, proc, cd, index)
			if err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				res.Index = -1
				res.Err = err
				res.Reason = err.Error()
				summary.Results = append(summary.Results, res)
				logger.Error("skipped card", "color", c, "position", pos, "text", cd.Raw, "err", err)
				g.report.cardFailed(res)
				continue
			}

			res.Path = path
			summary.Results = append(summary.Results, res)
			next++
			logger.Debug("generated card", "color", c, "index", index, "path", path)
			g.report.cardCreated(c, index)
		}
	}

	g.enter(StagePackaging)
	archive, err := output.Package(output.PackageOptions{
		Root:       g.opts.OutputRoot,
		SourceDir:  d.Path,
		ArchiveDir: g.opts.ArchiveDir,
		Name:       deck.DirName(d.Name),
	})
	if err != nil {
		return summary, fmt.Errorf("packaging: %w", err)
	}
	summary.Archive = archive

	files, err := output.CountFiles(g.opts.OutputRoot)
	if err != nil {
		return summary, fmt.Errorf("counting output files: %w", err)
	}
	summary.FileCount = files
	logger.Info("bundled deck", "archive", archive, "files", files)
	g.report.packaged(archive, files)

	g.enter(StageDone)
	return summary, nil
}

// generate renders one card, applies its overlays and writes it to the
// output tree.
func (g *Generator) generate(ctx context.Context, proc *overlay.Processor, cd card.Card, index int) (string, error) {
	img, err := g.opts.Renderer.Render(ctx, cd.Text, cd.Color)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	decorated, err := proc.Apply(img, cd)
	if err != nil {
		return "", fmt.Errorf("overlay: %w", err)
	}
	return output.Relocate(g.opts.OutputRoot, cd.Color, index, decorated)
}
