package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/oggopus/pkg/oggopus"
)

var tagsCmd = &cobra.Command{
	Use:   "tags <file>",
	Short: "Show the comment header (vendor string and tags)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		src, err := oggopus.NewOggSource(f)
		if err != nil {
			return err
		}
		defer src.Close()

		_, comments, err := readHeaders(src)
		if err != nil {
			return err
		}

		printField("Vendor", "%s", comments.Vendor)
		for _, tag := range comments.Tags {
			fmt.Println(tag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
