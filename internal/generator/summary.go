package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arcanaland/cardpress/internal/card"
)

// ErrIncomplete is returned alongside a Summary when at least one card was
// skipped. The archive still holds every card that was generated.
var ErrIncomplete = errors.New("some cards were skipped")

// Stage is a step of a generation run. Runs move strictly forward.
type Stage int

const (
	StageInit Stage = iota
	StageReading
	StageGeneratingWhite
	StageGeneratingBlack
	StagePackaging
	StageDone
)

var stageNames = map[Stage]string{
	StageInit:            "init",
	StageReading:         "reading",
	StageGeneratingWhite: "generating(white)",
	StageGeneratingBlack: "generating(black)",
	StagePackaging:       "packaging",
	StageDone:            "done",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage name written by MarshalText.
func (s *Stage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage: %q", text)
}

func generatingStage(c card.Color) Stage {
	if c == card.Black {
		return StageGeneratingBlack
	}
	return StageGeneratingWhite
}

// CardResult is the outcome of one card.
type CardResult struct {
	Color    card.Color `json:"color"`
	Position int        `json:"position"`        // Line position in the source file, 0-based
	Index    int        `json:"index"`           // Output index; -1 when skipped
	Text     string     `json:"text"`            // Card body as read
	Path     string     `json:"path,omitempty"`  // Written image
	Reason   string     `json:"reason,omitempty"`
	Err      error      `json:"-"`
}

// Skipped reports whether the card was dropped from the output. Results
// read back from a manifest only carry the Reason.
func (r CardResult) Skipped() bool {
	return r.Err != nil || r.Reason != ""
}

// Summary describes a generation run.
type Summary struct {
	RunID     string       `json:"run_id"`
	Deck      string       `json:"deck"`
	Started   time.Time    `json:"started"`
	Finished  time.Time    `json:"finished"`
	Stage     Stage        `json:"stage"` // Last stage reached
	Results   []CardResult `json:"results"`
	Archive   string       `json:"archive,omitempty"`
	FileCount int          `json:"file_count"`
}

// Generated returns the number of cards of the given color written.
func (s *Summary) Generated(c card.Color) int {
	n := 0
	for _, r := range s.Results {
		if r.Color == c && !r.Skipped() {
			n++
		}
	}
	return n
}

// Skipped returns the results of every dropped card in processing order.
func (s *Summary) Skipped() []CardResult {
	var skipped []CardResult
	for _, r := range s.Results {
		if r.Skipped() {
			skipped = append(skipped, r)
		}
	}
	return skipped
}

// Err returns ErrIncomplete when any card was skipped.
func (s *Summary) Err() error {
	if n := len(s.Skipped()); n > 0 {
		return fmt.Errorf("%w: %d of %d cards", ErrIncomplete, n, len(s.Results))
	}
	return nil
}

// WriteManifest writes the summary as indented JSON.
func (s *Summary) WriteManifest(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a summary written by WriteManifest. Per-card errors
// are only available through CardResult.Reason.
func ReadManifest(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error decoding manifest: %w", err)
	}
	return &s, nil
}

// Lookup returns the generated card written to path.
func (s *Summary) Lookup(path string) (CardResult, bool) {
	want, err := filepath.Abs(path)
	if err != nil {
		return CardResult{}, false
	}
	for _, r := range s.Results {
		if r.Path == "" {
			continue
		}
		if got, err := filepath.Abs(r.Path); err == nil && got == want {
			return r, true
		}
	}
	return CardResult{}, false
}
