// Package overlay post-processes rendered card images.
//
// A Processor applies, in order, the branding overlay (cover the stock logo
// and print the game name), the version text, a custom slot image and a
// built-in icon. Each step works on the output of the previous one, so the
// overlays compose visually. Nothing is written to disk here.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	"golang.org/x/image/font"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
)

// ErrSlotEmpty is returned when a card references a slot the metadata
// leaves unset.
var ErrSlotEmpty = errors.New("custom image slot not configured")

// Processor applies the deck's overlays to rendered cards.
type Processor struct {
	Layout    Layout
	Meta      deck.Metadata
	Face      font.Face // Nil loads the embedded font on first use
	CustomDir string    // Base directory for relative custom image paths
	AssetDir  string    // Directory holding built-in icon images
}

// Apply returns a copy of img with every applicable overlay drawn. The
// input image is not modified.
func (p *Processor) Apply(img image.Image, c card.Card) (*image.NRGBA, error) {
	out := imaging.Clone(img)
	inverted := c.Color.Inverted()

	if p.Meta.GameName != "" {
		if err := p.ensureFace(); err != nil {
			return nil, err
		}
		out = p.drawBranding(out, p.brandingText(c), inverted)
	}

	if p.Meta.GameVersion != "" {
		if err := p.ensureFace(); err != nil {
			return nil, err
		}
		out = p.drawText(out, p.Meta.GameVersion, p.Layout.VersionAnchor, p.Layout.Foreground)
	}

	if slot, ok := c.Slot(); ok {
		var err error
		if out, err = p.pasteCustom(out, slot, inverted); err != nil {
			return nil, err
		}
	}

	if kind, ok := c.Icon(); ok {
		var err error
		if out, err = p.pasteIcon(out, kind); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// brandingText picks the name printed on a card. Pick cards have less room
// next to their icon and use the short name when one is set.
func (p *Processor) brandingText(c card.Card) string {
	if kind, ok := c.Icon(); ok && p.Meta.ShortName != "" {
		if kind == card.IconPickTwo || kind == card.IconPickThree {
			return p.Meta.ShortName
		}
	}
	return p.Meta.GameName
}

func (p *Processor) ensureFace() error {
	if p.Face != nil {
		return nil
	}
	face, err := LoadFace("", p.Layout.FontSize)
	if err != nil {
		return err
	}
	p.Face = face
	return nil
}

func (p *Processor) drawBranding(img *image.NRGBA, text string, inverted bool) *image.NRGBA {
	fill, ink := p.Layout.colors(inverted)
	r := p.Layout.LogoCover

	dc := gg.NewContextForImage(img)
	dc.SetColor(fill)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Fill()

	dc.SetFontFace(p.Face)
	dc.SetColor(ink)
	dc.DrawStringAnchored(text, float64(p.Layout.NameAnchor.X), float64(p.Layout.NameAnchor.Y), 0, 1)

	return imaging.Clone(dc.Image())
}

func (p *Processor) drawText(img *image.NRGBA, text string, at image.Point, ink color.Color) *image.NRGBA {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(p.Face)
	dc.SetColor(ink)
	dc.DrawStringAnchored(text, float64(at.X), float64(at.Y), 0, 1)
	return imaging.Clone(dc.Image())
}

func (p *Processor) pasteCustom(img *image.NRGBA, slot int, inverted bool) (*image.NRGBA, error) {
	if err := card.ValidSlot(slot); err != nil {
		return nil, err
	}
	path, ok := p.Meta.CustomImage(slot)
	if !ok {
		return nil, fmt.Errorf("%w: {{%d}}", ErrSlotEmpty, slot)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.CustomDir, path)
	}

	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening custom image: %w", err)
	}

	if bound := p.Layout.CustomMax; bound.X > 0 && bound.Y > 0 {
		b := src.Bounds()
		if b.Dx() > bound.X || b.Dy() > bound.Y {
			src = resize.Thumbnail(uint(bound.X), uint(bound.Y), src, resize.Lanczos3)
		}
	}
	if inverted {
		src = imaging.Invert(src)
	}

	return imaging.Paste(img, src, p.Layout.CustomAnchor), nil
}

func (p *Processor) pasteIcon(img *image.NRGBA, kind card.IconKind) (*image.NRGBA, error) {
	icon, ok := p.Layout.Icons[kind]
	if !ok {
		return nil, fmt.Errorf("no icon configured for [[%s]]", kind)
	}

	src, err := imaging.Open(filepath.Join(p.AssetDir, icon.Image))
	if err != nil {
		return nil, fmt.Errorf("error opening icon image: %w", err)
	}

	return imaging.Paste(img, src, icon.Anchor), nil
}
