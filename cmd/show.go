package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/generator"
	"github.com/arcanaland/cardpress/internal/output"
	"github.com/arcanaland/cardpress/internal/preview"
)

var showCmd = &cobra.Command{
	Use:   "show [path | color index]",
	Short: "Display a generated card as ANSI art",
	Long: `Show previews a generated card in the terminal.

Pass either the path of a card image, or a color and an index to pick a card
from the output directory of the config file.

Examples:
  cardpress show output/white/card_0.png
  cardpress show black 3
  cardpress show --width 60 --manifest run.json white 12`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if len(args) == 2 {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			color, err := card.ParseColor(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return fmt.Errorf("invalid card index: %s", args[1])
			}
			path = filepath.Join(cfg.Paths.Output, output.CardPath(color, index))
		}

		img, err := imaging.Open(path)
		if err != nil {
			return fmt.Errorf("error loading card image: %v", err)
		}

		// Get terminal width
		termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || termWidth <= 0 {
			termWidth = 80
		}

		width, _ := cmd.Flags().GetInt("width")
		art := preview.ImageToAnsi(img, width, preview.Rows(img, width), !colorize.NoColor)

		b := img.Bounds()
		info := []string{
			colorize.CyanString("Card: ") + colorize.HiWhiteString("%s", filepath.Base(path)),
			colorize.CyanString("Path: ") + colorize.HiWhiteString("%s", filepath.Dir(path)),
			colorize.CyanString("Size: ") + colorize.HiWhiteString("%dx%d", b.Dx(), b.Dy()),
		}
		if color, err := card.ParseColor(filepath.Base(filepath.Dir(path))); err == nil {
			info = append(info, colorize.CyanString("Type: ")+colorize.HiWhiteString("%s", color))
		}
		if manifest, _ := cmd.Flags().GetString("manifest"); manifest != "" {
			summary, err := generator.ReadManifest(manifest)
			if err != nil {
				return err
			}
			if res, ok := summary.Lookup(path); ok {
				info = append(info, colorize.CyanString("Deck: ")+colorize.HiWhiteString("%s", summary.Deck))
				info = append(info, colorize.CyanString("Line: ")+colorize.HiWhiteString("%d", res.Position+1))
				info = append(info, "", colorize.CyanString("Text:"))
				info = append(info, preview.WrapText(res.Text, preview.InfoWidth(art, termWidth))...)
			}
		}

		preview.SideBySide(cmd.OutOrStdout(), art, info)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().IntP("width", "w", 40, "preview width in terminal columns")
	showCmd.Flags().String("manifest", "", "run manifest written by generate, used to print the card text")
}
