package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/haivivi/oggopus/pkg/opus"
	"github.com/haivivi/oggopus/pkg/oggopus"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

func printField(name string, format string, args ...any) {
	fmt.Printf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-16s", name+":")), fmt.Sprintf(format, args...))
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show stream parameters and packet statistics",
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

		id, comments, err := readHeaders(src)
		if err != nil {
			return err
		}

		printField("Channels", "%d", id.Channels)
		printField("Pre-skip", "%d samples", id.PreSkip)
		printField("Input rate", "%d Hz", id.SampleRate)
		printField("Output gain", "%+.2f dB", float64(id.OutputGain)/256)
		printField("Mapping family", "%d", id.MappingFamily)
		if id.MappingFamily != 0 {
			printField("Streams", "%d (%d coupled)", id.Streams, id.CoupledStreams)
			printField("Mapping", "%v", id.Mapping)
		}
		printField("Vendor", "%s", comments.Vendor)

		stats, err := gatherStats(src)
		if err != nil {
			return err
		}

		fmt.Println()
		printField("Packets", "%d", stats.packets)
		printField("Duration", "%s", stats.duration.Round(time.Millisecond))
		if stats.duration > 0 {
			printField("Bitrate", "%.1f kbit/s", float64(stats.bytes)*8/stats.duration.Seconds()/1000)
		}

		if verbose {
			keys := make([]opus.Configuration, 0, len(stats.configs))
			for c := range stats.configs {
				keys = append(keys, c)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			fmt.Println()
			for _, c := range keys {
				fmt.Printf("  %s %s\n",
					dimStyle.Render(fmt.Sprintf("%6d x", stats.configs[c])),
					fmt.Sprintf("%s %s %s", c.Mode(), c.Bandwidth(), c.FrameDuration()))
			}
		}
		return nil
	},
}

type packetStats struct {
	packets  int
	bytes    int
	duration time.Duration
	configs  map[opus.Configuration]int
}

// gatherStats tallies the audio packets of src from their TOC bytes; no
// decoder is constructed. A source error other than end-of-stream is
// returned rather than reported as a short file.
func gatherStats(src oggopus.PacketSource) (packetStats, error) {
	stats := packetStats{configs: map[opus.Configuration]int{}}
	for {
		p, err := src.NextPacket()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}
		pkt := opus.Packet(p)
		stats.packets++
		stats.bytes += len(p)
		stats.duration += pkt.Duration()
		stats.configs[pkt.TOC().Configuration()]++
	}
}

// readHeaders pulls and parses the two header packets from src.
func readHeaders(src oggopus.PacketSource) (*oggopus.IDHeader, *oggopus.CommentHeader, error) {
	idPacket, err := src.NextPacket()
	if err != nil {
		return nil, nil, fmt.Errorf("reading identification header: %w", err)
	}
	id, err := oggopus.ParseIDHeader(idPacket)
	if err != nil {
		return nil, nil, err
	}
	commentPacket, err := src.NextPacket()
	if err != nil {
		return nil, nil, fmt.Errorf("reading comment header: %w", err)
	}
	comments, err := oggopus.ParseCommentHeader(commentPacket)
	if err != nil {
		return nil, nil, err
	}
	return id, comments, nil
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
