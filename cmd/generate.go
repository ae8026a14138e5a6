package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/image/font"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/generator"
	"github.com/arcanaland/cardpress/internal/overlay"
	"github.com/arcanaland/cardpress/internal/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the card images and archive of a deck",
	Long: `Generate renders every card of a deck, applies the deck's overlays and
bundles the result into <decks>/deck_<name>.zip.

The deck is chosen with --deck, then the DECK environment variable, then
default_deck from the config file. Cards that fail are skipped and reported;
the command then exits with status 2.

Examples:
  cardpress generate --deck party
  DECK=party cardpress generate --manifest run.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		deckFlag, _ := cmd.Flags().GetString("deck")
		name, err := cfg.ResolveDeck(deckFlag)
		if err != nil {
			return err
		}
		deckPath := deck.Dir(cfg.Paths.Cards, name)
		if _, err := os.Stat(deckPath); os.IsNotExist(err) {
			return fmt.Errorf("deck directory not found: %s", deckPath)
		}

		opts, err := generatorOptions(cfg)
		if err != nil {
			return err
		}
		opts.DeckDir = deckPath
		opts.PreserveIndex, _ = cmd.Flags().GetBool("preserve-index")
		opts.Clean, _ = cmd.Flags().GetBool("clean")
		opts.Out = cmd.OutOrStdout()

		g, err := generator.New(opts)
		if err != nil {
			return err
		}
		summary, runErr := g.Run(cmd.Context())

		if manifest, _ := cmd.Flags().GetString("manifest"); manifest != "" && summary != nil {
			if err := summary.WriteManifest(manifest); err != nil {
				logger.Error("writing manifest", "err", err)
			} else {
				logger.Info("wrote manifest", "path", manifest)
			}
		}

		if runErr != nil {
			return runErr
		}
		return summary.Err()
	},
}

func init() {
	RootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("deck", "d", "", "deck name, without the deck_ prefix")
	generateCmd.Flags().Bool("preserve-index", false, "name outputs after their source line, leaving gaps for skipped cards")
	generateCmd.Flags().Bool("clean", true, "remove generated cards of earlier runs first")
	generateCmd.Flags().String("manifest", "", "write a JSON run summary to this file")
}

// generatorOptions builds the deck-independent pipeline options from cfg.
func generatorOptions(cfg *config.Config) (generator.Options, error) {
	schema, err := deck.ParseSchema(cfg.Metadata.Schema)
	if err != nil {
		return generator.Options{}, err
	}
	timeout, err := cfg.Renderer.TimeoutDuration()
	if err != nil {
		return generator.Options{}, err
	}
	if len(cfg.Renderer.Command) == 0 {
		return generator.Options{}, fmt.Errorf("renderer.command is not set in the config file")
	}
	layout, err := overlay.LayoutFromConfig(cfg.Layout)
	if err != nil {
		return generator.Options{}, err
	}

	return generator.Options{
		Schema:     schema,
		OutputRoot: cfg.Paths.Output,
		ArchiveDir: cfg.Paths.Decks,
		Renderer: &render.ExecRenderer{
			Command: cfg.Renderer.Command,
			Dir:     cfg.Renderer.Dir,
			Output:  cfg.Renderer.Output,
			BatchID: cfg.Renderer.BatchID,
			Timeout: timeout,
		},
		Layout:    layout,
		Face:      loadFace(cfg.Paths.Font, layout.FontSize),
		CustomDir: cfg.Paths.CustomImages,
		AssetDir:  cfg.Paths.Assets,
		Logger:    logger,
	}, nil
}

// loadFace loads the configured font, falling back to the embedded one.
func loadFace(path string, size float64) font.Face {
	if path != "" {
		face, err := overlay.LoadFace(path, size)
		if err == nil {
			return face
		}
		logger.Warn("using embedded font", "font", path, "err", err)
	}
	face, err := overlay.LoadFace("", size)
	if err != nil {
		// Nil makes the processor retry the embedded font on first use
		return nil
	}
	return face
}
