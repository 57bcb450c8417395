package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "opusinfo",
	Short: "Inspect and decode Ogg-Opus streams",
	Long: `opusinfo - inspect and decode Ogg-Opus streams.

Examples:
  # Show stream parameters and packet statistics
  opusinfo info speech.opus

  # Show the comment header
  opusinfo tags speech.opus

  # Decode to a 16 kHz WAV file
  opusinfo decode --rate 16000 -o speech.wav speech.opus`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
