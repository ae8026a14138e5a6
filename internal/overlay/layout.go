package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/config"
)

// Layout is the overlay geometry for one rendered card size.
type Layout struct {
	LogoCover     image.Rectangle // Covers the renderer's default logo
	NameAnchor    image.Point     // Top-left of the game name text
	VersionAnchor image.Point     // Top-left of the version text
	FontSize      float64
	CustomAnchor  image.Point
	CustomMax     image.Point // Bounding box for custom images; zero keeps their size

	Foreground color.Color // Ink on white cards
	Background color.Color // Paper on white cards

	Icons map[card.IconKind]Icon
}

// Icon is a built-in overlay image and where it goes.
type Icon struct {
	Image  string // File name inside the asset directory
	Anchor image.Point
}

// LayoutFromConfig converts the config section into a Layout.
func LayoutFromConfig(c config.LayoutConfig) (Layout, error) {
	fg, err := colorful.Hex(c.Foreground)
	if err != nil {
		return Layout{}, fmt.Errorf("invalid foreground color %q: %w", c.Foreground, err)
	}
	bg, err := colorful.Hex(c.Background)
	if err != nil {
		return Layout{}, fmt.Errorf("invalid background color %q: %w", c.Background, err)
	}

	l := Layout{
		LogoCover:     image.Rect(c.LogoCover[0], c.LogoCover[1], c.LogoCover[2], c.LogoCover[3]),
		NameAnchor:    image.Pt(c.NameAnchor[0], c.NameAnchor[1]),
		VersionAnchor: image.Pt(c.VersionAnchor[0], c.VersionAnchor[1]),
		FontSize:      c.FontSize,
		CustomAnchor:  image.Pt(c.CustomAnchor[0], c.CustomAnchor[1]),
		CustomMax:     image.Pt(c.CustomMax[0], c.CustomMax[1]),
		Foreground:    toNRGBA(fg),
		Background:    toNRGBA(bg),
		Icons:         make(map[card.IconKind]Icon, len(c.Icons)),
	}
	for kind, icon := range c.Icons {
		l.Icons[card.IconKind(kind)] = Icon{
			Image:  icon.Image,
			Anchor: image.Pt(icon.Anchor[0], icon.Anchor[1]),
		}
	}

	return l, nil
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// colors returns the cover fill and text ink. Inverted cards swap them.
func (l Layout) colors(inverted bool) (fill, ink color.Color) {
	if inverted {
		return l.Foreground, l.Background
	}
	return l.Background, l.Foreground
}
