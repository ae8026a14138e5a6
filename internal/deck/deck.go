package deck

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arcanaland/cardpress/internal/card"
)

// Source file names inside a deck directory.
const (
	WhiteFile = "white.txt"
	BlackFile = "black.txt"
	InfoFile  = "info.txt"

	dirPrefix = "deck_"
)

// Deck represents one deck source directory
type Deck struct {
	Name string // Deck name without the deck_ prefix
	Path string

	White []string
	Black []string

	Meta Metadata
	// MetaErr is set when the info file was present but ignored.
	MetaErr error
}

// DirName returns the directory name used for a deck in the cards library.
func DirName(name string) string {
	return dirPrefix + name
}

// Dir returns the source directory of the named deck under cardsRoot.
func Dir(cardsRoot, name string) string {
	return filepath.Join(cardsRoot, DirName(name))
}

// LoadDeck reads the card sources and metadata of a deck directory. Missing
// card sources are fatal; a missing or malformed info file only leaves
// Meta empty.
func LoadDeck(deckPath string, schema Schema) (*Deck, error) {
	white, err := ReadLines(filepath.Join(deckPath, WhiteFile))
	if err != nil {
		return nil, err
	}
	black, err := ReadLines(filepath.Join(deckPath, BlackFile))
	if err != nil {
		return nil, err
	}

	d := &Deck{
		Name:  strings.TrimPrefix(filepath.Base(deckPath), dirPrefix),
		Path:  deckPath,
		White: white,
		Black: black,
	}

	infoPath := filepath.Join(deckPath, InfoFile)
	if _, err := os.Stat(infoPath); err == nil {
		d.Meta, d.MetaErr = ParseMetadataStrict(infoPath, schema)
	}

	return d, nil
}

// Lines returns the card bodies of the given color.
func (d *Deck) Lines(color card.Color) []string {
	if color == card.Black {
		return d.Black
	}
	return d.White
}

// Cards parses the card bodies of the given color.
func (d *Deck) Cards(color card.Color) []card.Card {
	lines := d.Lines(color)
	cards := make([]card.Card, 0, len(lines))
	for _, line := range lines {
		cards = append(cards, card.Parse(line, color))
	}
	return cards
}

// Total returns the number of cards of both colors.
func (d *Deck) Total() int {
	return len(d.White) + len(d.Black)
}

// ReadLines returns the trimmed, non-empty lines of a text file in file
// order.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("card source not found: %s", path)
		}
		return nil, fmt.Errorf("error opening card source: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	return lines, nil
}

// List returns the names of the deck directories found under cardsRoot,
// sorted alphabetically.
func List(cardsRoot string) ([]string, error) {
	entries, err := os.ReadDir(cardsRoot)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		// Resolve symbolic links to deck directories
		info, err := os.Stat(filepath.Join(cardsRoot, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, strings.TrimPrefix(entry.Name(), dirPrefix))
	}
	sort.Strings(names)

	return names, nil
}

// Init creates a new deck directory with empty card sources and an info
// file with every field set to none.
func Init(cardsRoot, name string, schema Schema) (string, error) {
	dir := Dir(cardsRoot, name)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("deck already exists: %s", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating deck directory: %w", err)
	}

	files := map[string]string{
		WhiteFile: "",
		BlackFile: "",
		InfoFile:  Template(schema),
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0644); err != nil {
			return "", fmt.Errorf("error writing %s: %w", file, err)
		}
	}

	return dir, nil
}
