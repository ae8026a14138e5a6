package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a deck directory",
	Long: `Validate checks a deck directory before generation: the card sources, the
info file, the custom images it references and the tags used on each card.

Without a path the deck is chosen like generate does (--deck, DECK, default_deck).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var deckPath string
		if len(args) == 1 {
			deckPath = args[0]
		} else {
			deckFlag, _ := cmd.Flags().GetString("deck")
			name, err := cfg.ResolveDeck(deckFlag)
			if err != nil {
				return err
			}
			deckPath = deck.Dir(cfg.Paths.Cards, name)
		}

		// Check if path exists
		if _, err := os.Stat(deckPath); os.IsNotExist(err) {
			return fmt.Errorf("deck directory not found: %s", deckPath)
		}

		schema, err := deck.ParseSchema(cfg.Metadata.Schema)
		if err != nil {
			return err
		}

		// Create validator and run validation
		v := validator.NewValidator(deckPath, schema, cfg.Paths.CustomImages)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %v", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if results.Valid() {
			fmt.Fprintf(out, "✅ Deck '%s' is valid.\n", deckPath)
		} else {
			fmt.Fprintf(out, "❌ Deck '%s' has %d validation errors:\n", deckPath, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if !results.Valid() {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("deck", "d", "", "deck name, without the deck_ prefix")
}
