package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/deck"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage decks in your cards directory",
	Long:  `Commands for managing the deck_<name> directories in your cards directory.`,
}

// deckListCmd represents the deck list command
var deckListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available decks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		// Check if the cards directory exists
		if _, err := os.Stat(cfg.Paths.Cards); os.IsNotExist(err) {
			fmt.Fprintf(out, "Cards directory %s does not exist.\n", cfg.Paths.Cards)
			fmt.Fprintln(out, "Run 'cardpress deck init <name>' to create a deck.")
			return nil
		}

		names, err := deck.List(cfg.Paths.Cards)
		if err != nil {
			return fmt.Errorf("error reading cards directory: %v", err)
		}
		if len(names) == 0 {
			fmt.Fprintln(out, "No decks found in", cfg.Paths.Cards)
			return nil
		}

		schema, err := deck.ParseSchema(cfg.Metadata.Schema)
		if err != nil {
			return err
		}

		for _, name := range names {
			d, err := deck.LoadDeck(deck.Dir(cfg.Paths.Cards, name), schema)
			if err != nil {
				// Not a valid deck
				logger.Debug("skipping deck", "deck", name, "err", err)
				continue
			}

			label := fmt.Sprintf("%s (%d white, %d black)", name, len(d.White), len(d.Black))
			if d.Meta.GameName != "" {
				label += " " + d.Meta.GameName
			}
			if name == cfg.DefaultDeck {
				fmt.Fprintf(out, "* %s [DEFAULT]\n", label)
			} else {
				fmt.Fprintf(out, "  %s\n", label)
			}
		}
		return nil
	},
}

// deckSetDefaultCmd represents the deck set-default command
var deckSetDefaultCmd = &cobra.Command{
	Use:   "set-default [deck_name]",
	Short: "Set the default deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckName := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		schema, err := deck.ParseSchema(cfg.Metadata.Schema)
		if err != nil {
			return err
		}

		// Try to load the deck to make sure it's valid
		if _, err := deck.LoadDeck(deck.Dir(cfg.Paths.Cards, deckName), schema); err != nil {
			return fmt.Errorf("not a valid deck: %v", err)
		}

		if err := config.SetDefaultDeck(configPath, deckName); err != nil {
			return fmt.Errorf("error setting default deck: %v", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Default deck set to: %s\n", deckName)
		return nil
	},
}

// deckInitCmd represents the deck init command
var deckInitCmd = &cobra.Command{
	Use:   "init [deck_name]",
	Short: "Create a new deck with empty card sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("error initializing config: %v", err)
		}
		schema, err := deck.ParseSchema(cfg.Metadata.Schema)
		if err != nil {
			return err
		}

		dir, err := deck.Init(cfg.Paths.Cards, args[0], schema)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Deck initialized at:", dir)
		fmt.Fprintln(out, "Add one card per line to white.txt and black.txt, and fill in info.txt.")
		if configPath == "" {
			fmt.Fprintln(out, "Config file:", config.GetConfigFilePath())
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckSetDefaultCmd)
	deckCmd.AddCommand(deckInitCmd)
}
