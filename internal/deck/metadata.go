package deck

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/arcanaland/cardpress/internal/card"
)

// ErrMalformedMetadata marks an info file whose layout does not match the
// schema.
var ErrMalformedMetadata = errors.New("malformed metadata")

// absentValue is the literal that disables a metadata field.
const absentValue = "none"

// Schema selects the positional layout of the info file.
type Schema string

const (
	// SchemaFull: name, short name, version, then custom image slots 1-5.
	SchemaFull Schema = "full"
	// SchemaBasic: name, short name, version.
	SchemaBasic Schema = "basic"
)

// ParseSchema converts a config value into a Schema. Empty means full.
func ParseSchema(s string) (Schema, error) {
	switch Schema(s) {
	case "", SchemaFull:
		return SchemaFull, nil
	case SchemaBasic:
		return SchemaBasic, nil
	}
	return "", fmt.Errorf("unknown metadata schema: %q", s)
}

// Keys returns the expected keys in positional order.
func (s Schema) Keys() []string {
	keys := []string{"game_name", "short_name", "game_version"}
	if s == SchemaBasic {
		return keys
	}
	for i := 1; i <= card.MaxSlot; i++ {
		keys = append(keys, fmt.Sprintf("custom_img_%d", i))
	}
	return keys
}

// Metadata is the optional deck branding. Empty strings mean absent.
type Metadata struct {
	GameName    string
	ShortName   string
	GameVersion string

	// CustomImages maps slot 1..5 to an image path. Absent slots have no
	// entry.
	CustomImages map[int]string
}

// Empty reports whether no field is set.
func (m Metadata) Empty() bool {
	return m.GameName == "" && m.ShortName == "" && m.GameVersion == "" && len(m.CustomImages) == 0
}

// CustomImage returns the path configured for a slot.
func (m Metadata) CustomImage(slot int) (string, bool) {
	p, ok := m.CustomImages[slot]
	return p, ok
}

// ParseMetadata reads an info file. Any problem, including a missing
// file, yields the empty Metadata.
func ParseMetadata(path string, schema Schema) Metadata {
	meta, err := ParseMetadataStrict(path, schema)
	if err != nil {
		return Metadata{}
	}
	return meta
}

// ParseMetadataStrict reads an info file and reports why it was rejected.
// On error the returned Metadata is always empty, never a partial match.
func ParseMetadataStrict(path string, schema Schema) (Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return Metadata{}, err
	}

	return parseLines(lines, schema)
}

func parseLines(lines []string, schema Schema) (Metadata, error) {
	keys := schema.Keys()
	if len(lines) < len(keys) {
		return Metadata{}, fmt.Errorf("%w: expected %d lines, got %d", ErrMalformedMetadata, len(keys), len(lines))
	}

	values := make([]string, len(keys))
	for i := range keys {
		_, value, found := strings.Cut(lines[i], "=")
		if !found {
			return Metadata{}, fmt.Errorf("%w: line %d has no '='", ErrMalformedMetadata, i+1)
		}
		value = strings.TrimSpace(value)
		if value == absentValue {
			value = ""
		}
		values[i] = value
	}

	meta := Metadata{
		GameName:    values[0],
		ShortName:   values[1],
		GameVersion: values[2],
	}
	for i, value := range values[3:] {
		if value == "" {
			continue
		}
		if meta.CustomImages == nil {
			meta.CustomImages = make(map[int]string)
		}
		meta.CustomImages[i+1] = value
	}

	return meta, nil
}

// Template renders an info file with every field absent.
func Template(schema Schema) string {
	var b strings.Builder
	for _, key := range schema.Keys() {
		fmt.Fprintf(&b, "%s=%s\n", key, absentValue)
	}
	return b.String()
}
