package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/haivivi/oggopus/pkg/oggopus"
)

var (
	decodeOutput string
	decodeRate   int
	decodeRaw    bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode to WAV or raw PCM",
	Long: `Decode an Ogg-Opus file to 16-bit PCM.

Rates Opus decodes at natively (8000, 12000, 16000, 24000, 48000 Hz) are
produced by the decoder directly; any other rate is decoded at 48 kHz and
resampled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if decodeRate <= 0 {
			return fmt.Errorf("invalid rate %d", decodeRate)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		// Decode natively when possible, otherwise at 48 kHz for the
		// resampling pass below.
		opusRate := decodeRate
		switch decodeRate {
		case 8000, 12000, 16000, 24000, 48000:
		default:
			opusRate = 48000
		}

		s, err := oggopus.NewReader(f, opusRate)
		if err != nil {
			return err
		}
		defer s.Close()

		channels := s.Channels()
		var pcm []float64
		for {
			frame, err := s.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			for _, v := range frame {
				pcm = append(pcm, float64(v))
			}
		}

		if opusRate != decodeRate {
			pcm, err = resample(pcm, channels, opusRate, decodeRate)
			if err != nil {
				return err
			}
		}

		out, err := openOutput(args[0])
		if err != nil {
			return err
		}
		defer out.Close()

		samples := quantize(pcm)
		if decodeRaw {
			err = writeRaw(out, samples)
		} else {
			err = writeWAV(out, samples, channels, decodeRate)
		}
		if err != nil {
			return err
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "decoded %d samples x %d channels at %d Hz\n",
				len(samples)/channels, channels, decodeRate)
		}
		return nil
	},
}

func resample(pcm []float64, channels, from, to int) ([]float64, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("creating resampler: %w", err)
	}
	out, err := r.Process(pcm)
	if err != nil {
		return nil, fmt.Errorf("resampling: %w", err)
	}
	return out, nil
}

// quantize converts normalized samples to int16 with clipping.
func quantize(pcm []float64) []int16 {
	samples := make([]int16, len(pcm))
	for i, v := range pcm {
		switch {
		case v >= 1:
			samples[i] = 32767
		case v <= -1:
			samples[i] = -32768
		default:
			samples[i] = int16(v * 32767)
		}
	}
	return samples
}

func openOutput(input string) (io.WriteCloser, error) {
	name := decodeOutput
	if name == "" {
		name = strings.TrimSuffix(input, ".opus")
		if decodeRaw {
			name += ".pcm"
		} else {
			name += ".wav"
		}
	}
	if name == "-" {
		return os.Stdout, nil
	}
	return os.Create(name)
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "output file (default derived from input, '-' for stdout)")
	decodeCmd.Flags().IntVar(&decodeRate, "rate", 48000, "output sample rate in Hz")
	decodeCmd.Flags().BoolVar(&decodeRaw, "raw", false, "write raw s16le PCM instead of WAV")
	rootCmd.AddCommand(decodeCmd)
}
