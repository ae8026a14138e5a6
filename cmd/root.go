package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/cardpress/internal/config"
)

var (
	configPath string
	verbose    bool

	logger = newLogger(os.Stderr, log.InfoLevel)
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardpress",
	Short: "Batch generator for printable party game cards",
	Long: `Cardpress turns the white.txt and black.txt sources of a deck into printable
card images. Each card is drawn by an external renderer, decorated with the
deck's branding, custom images and icons, and bundled into deck_<name>.zip.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		logger.SetLevel(level)

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			colorize.NoColor = true
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cardpress/config.toml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	RootCmd.AddCommand(validateCmd)
}

// newLogger creates a logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configPath)
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}
