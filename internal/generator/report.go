package generator

import (
	"fmt"
	"io"

	colorize "github.com/fatih/color"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
)

// reporter prints the human progress report. It is not machine readable;
// use the Summary for that.
type reporter struct {
	w io.Writer

	info    *colorize.Color
	created *colorize.Color
	failed  *colorize.Color
	bundled *colorize.Color
}

func newReporter(w io.Writer) *reporter {
	if w == nil {
		w = io.Discard
	}
	return &reporter{
		w:       w,
		info:    colorize.New(colorize.FgCyan),
		created: colorize.New(colorize.FgGreen),
		failed:  colorize.New(colorize.FgRed, colorize.Bold),
		bundled: colorize.New(colorize.FgHiWhite, colorize.Bold),
	}
}

func (r *reporter) plan(d *deck.Deck) {
	total := d.Total()
	r.info.Fprintln(r.w, "[i] Attempting to generate the following:")
	fmt.Fprintln(r.w, " # Cards")
	fmt.Fprintf(r.w, "   # White cards: %d\n", len(d.White))
	fmt.Fprintf(r.w, "   # Black cards: %d\n", len(d.Black))
	fmt.Fprintf(r.w, "   # Total cards: %d\n", total)
	fmt.Fprintln(r.w, " # Zip Game Bundles: 1")
	fmt.Fprintf(r.w, " # Total Files: %d\n\n", total+1)

	if d.Meta.GameName != "" {
		r.info.Fprintf(r.w, "[i] Custom Game Name Enabled: %s\n", d.Meta.GameName)
	}
	if d.Meta.ShortName != "" {
		r.info.Fprintf(r.w, "[i] Custom Short Name Enabled: %s\n", d.Meta.ShortName)
	}
	if d.Meta.GameVersion != "" {
		r.info.Fprintf(r.w, "[i] Custom Game Version Enabled: %s\n", d.Meta.GameVersion)
	}
	fmt.Fprintln(r.w, "\n # Generating Cards...")
}

func (r *reporter) cardCreated(c card.Color, index int) {
	r.created.Fprintf(r.w, "   + Created: %s/card_%d.png\n", c, index)
}

func (r *reporter) cardFailed(res CardResult) {
	r.failed.Fprintf(r.w, "[!] Error generating card: %s - %s\n", res.Text, res.Color)
}

func (r *reporter) packaged(archive string, files int) {
	r.bundled.Fprintf(r.w, "\n+ Bundled all cards into: %s\n", archive)
	r.info.Fprintf(r.w, "\n[i] Total files bundled: %d\n", files)
	r.info.Fprintln(r.w, "[i] Done!")
}
