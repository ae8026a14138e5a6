package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DeckEnv names the environment variable that selects the deck to build.
const DeckEnv = "DECK"

// Config represents the application configuration
type Config struct {
	DefaultDeck string `toml:"default_deck"`

	Paths    PathsConfig    `toml:"paths"`
	Renderer RendererConfig `toml:"renderer"`
	Metadata MetadataConfig `toml:"metadata"`
	Layout   LayoutConfig   `toml:"layout"`
}

// PathsConfig locates inputs and outputs. Relative paths are resolved
// against the working directory.
type PathsConfig struct {
	Cards        string `toml:"cards"`         // Directory holding deck_<name> directories
	Output       string `toml:"output"`        // Output tree root
	Decks        string `toml:"decks"`         // Published archive directory
	CustomImages string `toml:"custom_images"` // Base for custom_img_N values
	Assets       string `toml:"assets"`        // Built-in icon images
	Font         string `toml:"font"`          // Empty selects the embedded font
}

// RendererConfig describes the external card renderer.
type RendererConfig struct {
	Command []string `toml:"command"`
	Dir     string   `toml:"dir"`
	Output  string   `toml:"output"` // Image path written by the renderer, relative to Dir
	BatchID string   `toml:"batch_id"`
	Timeout string   `toml:"timeout"` // Go duration, empty or "0" for none
}

// TimeoutDuration parses Timeout.
func (r RendererConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid renderer timeout %q: %w", r.Timeout, err)
	}
	return d, nil
}

// MetadataConfig selects the info file layout.
type MetadataConfig struct {
	Schema string `toml:"schema"` // "full" or "basic"
}

// LayoutConfig holds overlay geometry in pixels of the rendered card.
type LayoutConfig struct {
	LogoCover     [4]int  `toml:"logo_cover"` // x0, y0, x1, y1
	NameAnchor    [2]int  `toml:"name_anchor"`
	VersionAnchor [2]int  `toml:"version_anchor"`
	FontSize      float64 `toml:"font_size"`
	CustomAnchor  [2]int  `toml:"custom_anchor"`
	CustomMax     [2]int  `toml:"custom_max"` // 0 keeps the custom image size
	Foreground    string  `toml:"foreground"`
	Background    string  `toml:"background"`

	Icons map[string]IconConfig `toml:"icons"`
}

// IconConfig places a built-in icon.
type IconConfig struct {
	Image  string `toml:"image"`
	Anchor [2]int `toml:"anchor"`
}

// Default returns the configuration matching the stock renderer layout.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Cards:        "cards",
			Output:       "output",
			Decks:        "decks",
			CustomImages: "custom_img",
			Assets:       "img",
			Font:         "fonts/NimbusSanL-Bol.otf",
		},
		Renderer: RendererConfig{
			Command: []string{"php", "generator.php"},
			Dir:     ".",
			Output:  "files/cards/cards_0.png",
			BatchID: "cards",
			Timeout: "2m",
		},
		Metadata: MetadataConfig{Schema: "full"},
		Layout:   DefaultLayout(),
	}
}

// DefaultLayout returns the stock overlay geometry.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		LogoCover:     [4]int{800, 3700, 3000, 5000},
		NameAnchor:    [2]int{840, 3900},
		VersionAnchor: [2]int{650, 3900},
		FontSize:      92,
		CustomAnchor:  [2]int{2200, 3650},
		Foreground:    "#000000",
		Background:    "#ffffff",
		Icons: map[string]IconConfig{
			"2":     {Image: "p2.png", Anchor: [2]int{2150, 3740}},
			"3":     {Image: "d2p3.png", Anchor: [2]int{2150, 3625}},
			"gears": {Image: "gears.png", Anchor: [2]int{2350, 3500}},
		},
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "cardpress", "config.toml")
}

// LoadConfig loads the config file at path, or the default location when
// path is empty. A missing default file is created.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return createDefaultConfig(path)
		}
	}

	// Unset keys keep their defaults
	config := Default()
	config.Layout.Icons = nil
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	if config.Layout.Icons == nil {
		config.Layout.Icons = DefaultLayout().Icons
	}

	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(configPath string) (*Config, error) {
	config := Default()
	if err := writeConfig(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

func writeConfig(configPath string, config *Config) error {
	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// ResolveDeck picks the deck to build: the explicit name, then the DECK
// environment variable, then the configured default.
func (c *Config) ResolveDeck(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if env := os.Getenv(DeckEnv); env != "" {
		return env, nil
	}
	if c.DefaultDeck != "" {
		return c.DefaultDeck, nil
	}
	return "", fmt.Errorf("no deck selected: pass --deck or set %s", DeckEnv)
}

// SetDefaultDeck sets the default deck in the config file at path, or the
// default location when path is empty.
func SetDefaultDeck(path, deckName string) error {
	if path == "" {
		path = GetConfigFilePath()
	}
	config := Default()
	if _, err := os.Stat(path); err == nil {
		if config, err = LoadConfig(path); err != nil {
			return err
		}
	}

	config.DefaultDeck = deckName

	return writeConfig(path, config)
}
