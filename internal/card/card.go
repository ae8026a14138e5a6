package card

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Color is the card category. It decides layout polarity and which
// built-in icons may appear.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Colors lists the card colors in generation order.
var Colors = []Color{White, Black}

// ParseColor converts a string such as "white" into a Color.
func ParseColor(s string) (Color, error) {
	switch Color(strings.ToLower(strings.TrimSpace(s))) {
	case White:
		return White, nil
	case Black:
		return Black, nil
	}
	return "", fmt.Errorf("unknown card color: %q", s)
}

// Inverted reports whether overlays drawn on this color use light-on-dark.
func (c Color) Inverted() bool {
	return c == Black
}

// Number of configurable custom image slots.
const MaxSlot = 5

// ErrSlotOutOfRange is returned for a slot tag outside 1..MaxSlot.
var ErrSlotOutOfRange = errors.New("custom image slot out of range")

// Card is one line of a deck source file.
type Card struct {
	Raw   string // Source line as read
	Color Color
	Text  string // Raw with every control tag removed
	Tags  []Tag
}

// Parse reads the control tags of a card body once. The returned Card is
// never mutated afterwards.
func Parse(raw string, color Color) Card {
	return Card{
		Raw:   raw,
		Color: color,
		Text:  Sanitize(raw),
		Tags:  parseTags(raw),
	}
}

// Slot returns the first slot reference on the card, if any.
func (c Card) Slot() (int, bool) {
	for _, t := range c.Tags {
		if t.Kind == TagSlot {
			return t.Slot, true
		}
	}
	return 0, false
}

// Icon returns the built-in icon applicable to the card. Only black cards
// carry icons; the first recognised marker in IconKinds order wins.
func (c Card) Icon() (IconKind, bool) {
	if c.Color != Black {
		return "", false
	}
	for _, kind := range IconKinds {
		for _, t := range c.Tags {
			if t.Kind == TagIcon && t.Icon == kind {
				return kind, true
			}
		}
	}
	return "", false
}

// TagKind distinguishes the two control tag families.
type TagKind int

const (
	TagSlot    TagKind = iota // {{N}}
	TagIcon                   // [[2]], [[3]], [[gears]]
	TagUnknown                // any other [[...]]
)

// IconKind names a built-in icon marker.
type IconKind string

const (
	IconPickTwo   IconKind = "2"
	IconPickThree IconKind = "3"
	IconMechanic  IconKind = "gears"
)

// IconKinds is the precedence order used when several markers co-occur.
var IconKinds = []IconKind{IconPickTwo, IconPickThree, IconMechanic}

// Tag is one control tag found in a card body.
type Tag struct {
	Kind TagKind
	Slot int      // TagSlot only
	Icon IconKind // TagIcon only
	Raw  string   // Literal markup, e.g. "{{1}}"
}

func (t Tag) String() string {
	return t.Raw
}

var (
	slotPattern    = regexp.MustCompile(`\{\{(\d)\}\}`)
	// Extra brackets belong to the tag, so "[[[2]]" and "[[a[b]]" are one tag each
	bracketPattern = regexp.MustCompile(`\[\[+([^\]]*)\]\]+`)
)

func parseTags(raw string) []Tag {
	var tags []Tag
	for _, m := range slotPattern.FindAllStringSubmatch(raw, -1) {
		n, _ := strconv.Atoi(m[1])
		tags = append(tags, Tag{Kind: TagSlot, Slot: n, Raw: m[0]})
	}
	for _, m := range bracketPattern.FindAllStringSubmatch(raw, -1) {
		t := Tag{Kind: TagUnknown, Raw: m[0]}
		for _, kind := range IconKinds {
			if m[1] == string(kind) {
				t.Kind = TagIcon
				t.Icon = kind
				break
			}
		}
		tags = append(tags, t)
	}
	return tags
}

// ValidSlot checks that n names one of the configurable slots.
func ValidSlot(n int) error {
	if n < 1 || n > MaxSlot {
		return fmt.Errorf("%w: {{%d}} (expected 1-%d)", ErrSlotOutOfRange, n, MaxSlot)
	}
	return nil
}

// Sanitize strips slot references and bracketed tags from text. Removal is
// repeated until nothing matches, so nested markup such as "[[[[2]]]]"
// cannot leave a new tag behind and Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	for {
		next := slotPattern.ReplaceAllString(text, "")
		next = bracketPattern.ReplaceAllString(next, "")
		if next == text {
			return text
		}
		text = next
	}
}
