package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found.
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

type Validator struct {
	DeckPath  string
	Schema    deck.Schema
	CustomDir string // Base for relative custom image paths
	Results   ValidationResults

	deck *deck.Deck
}

func NewValidator(deckPath string, schema deck.Schema, customDir string) *Validator {
	return &Validator{
		DeckPath:  deckPath,
		Schema:    schema,
		CustomDir: customDir,
		Results:   ValidationResults{},
	}
}

// Validate checks the deck directory. It returns an error only when the
// directory cannot be inspected at all; problems with its content are
// reported in the results.
func (v *Validator) Validate() (ValidationResults, error) {
	info, err := os.Stat(v.DeckPath)
	if err != nil {
		return v.Results, fmt.Errorf("deck directory not found: %s", v.DeckPath)
	}
	if !info.IsDir() {
		return v.Results, fmt.Errorf("not a directory: %s", v.DeckPath)
	}

	if !v.validateSources() {
		return v.Results, nil
	}
	v.validateInfo()
	v.validateCustomImages()
	v.validateCards(card.White)
	v.validateCards(card.Black)

	return v.Results, nil
}

func (v *Validator) errorf(format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

func (v *Validator) validateSources() bool {
	ok := true
	for _, name := range []string{deck.WhiteFile, deck.BlackFile} {
		if _, err := os.Stat(filepath.Join(v.DeckPath, name)); os.IsNotExist(err) {
			v.errorf("%s not found in %s", name, v.DeckPath)
			ok = false
		}
	}
	if !ok {
		return false
	}

	d, err := deck.LoadDeck(v.DeckPath, v.Schema)
	if err != nil {
		v.errorf("error reading card sources: %v", err)
		return false
	}
	v.deck = d

	if d.Total() == 0 {
		v.warnf("deck has no cards")
	}
	return true
}

func (v *Validator) validateInfo() {
	if _, err := os.Stat(filepath.Join(v.DeckPath, deck.InfoFile)); os.IsNotExist(err) {
		v.warnf("%s not found; cards will be generated without branding", deck.InfoFile)
		return
	}
	if v.deck.MetaErr != nil {
		v.warnf("%s is ignored: %v", deck.InfoFile, v.deck.MetaErr)
	}
}

func (v *Validator) customImagePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(v.CustomDir, path)
}

func (v *Validator) validateCustomImages() {
	for slot := 1; slot <= card.MaxSlot; slot++ {
		path, ok := v.deck.Meta.CustomImage(slot)
		if !ok {
			continue
		}
		if _, err := os.Stat(v.customImagePath(path)); err != nil {
			v.errorf("custom_img_%d: image not found: %s", slot, v.customImagePath(path))
		}
	}
}

func (v *Validator) validateCards(color card.Color) {
	file := deck.WhiteFile
	if color == card.Black {
		file = deck.BlackFile
	}

	for i, c := range v.deck.Cards(color) {
		where := fmt.Sprintf("%s card %d %q", file, i+1, c.Raw)

		var slots, icons int
		for _, tag := range c.Tags {
			switch tag.Kind {
			case card.TagSlot:
				slots++
				if slots > 1 {
					continue
				}
				if err := card.ValidSlot(tag.Slot); err != nil {
					v.errorf("%s: %v", where, err)
				} else if _, ok := v.deck.Meta.CustomImage(tag.Slot); !ok {
					v.errorf("%s: %s references custom_img_%d, which is not configured", where, tag, tag.Slot)
				}
			case card.TagIcon:
				icons++
				if color != card.Black {
					v.warnf("%s: %s is only drawn on black cards", where, tag)
				}
			case card.TagUnknown:
				v.warnf("%s: unknown tag %s will be removed", where, tag)
			}
		}

		if slots > 1 {
			v.warnf("%s: only the first custom image tag is used", where)
		}
		if icons > 1 && color == card.Black {
			kind, _ := c.Icon()
			v.warnf("%s: several built-in tags, only [[%s]] is drawn", where, kind)
		}
		if strings.TrimSpace(c.Text) == "" {
			v.warnf("%s: card has no text once tags are removed", where)
		}
	}
}
