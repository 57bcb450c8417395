// Package opus wraps the libopus reference implementation (via CGO) and
// provides pure-Go inspection of Opus packets per RFC 6716.
//
// The binding layer exposes the three decode-side primitives the rest of
// this module builds on: multistream decoder construction, float PCM
// decoding, and the per-packet sample-count query. An encoder binding is
// included for producing test fixtures and tooling output.
package opus

import (
	"fmt"
	"time"
)

type (
	// TOC is the table-of-contents byte that opens every Opus packet. It
	// carries a configuration number, a stereo flag and a frame count code:
	//
	//	 0 1 2 3 4 5 6 7
	//	+-+-+-+-+-+-+-+-+
	//	| config  |s| c |
	//	+-+-+-+-+-+-+-+-+
	//
	// https://datatracker.ietf.org/doc/html/rfc6716#section-3.1
	TOC byte

	// Configuration is the 5-bit configuration number from the TOC byte.
	// It selects the coding mode, audio bandwidth and frame duration:
	//
	//	 0...3   SILK-only  NB   10, 20, 40, 60 ms
	//	 4...7   SILK-only  MB   10, 20, 40, 60 ms
	//	 8...11  SILK-only  WB   10, 20, 40, 60 ms
	//	12...13  Hybrid     SWB  10, 20 ms
	//	14...15  Hybrid     FB   10, 20 ms
	//	16...19  CELT-only  NB   2.5, 5, 10, 20 ms
	//	20...23  CELT-only  WB   2.5, 5, 10, 20 ms
	//	24...27  CELT-only  SWB  2.5, 5, 10, 20 ms
	//	28...31  CELT-only  FB   2.5, 5, 10, 20 ms
	Configuration byte

	// Mode is the codec operating mode selected by a configuration:
	// SILK-only for low-rate speech, CELT-only for low-delay and music,
	// or the Hybrid of the two for SWB/FB speech.
	Mode byte

	// FrameDuration is the duration of one coded frame. Opus frames are
	// 2.5, 5, 10, 20, 40 or 60 ms long.
	FrameDuration byte

	// Bandwidth is the audio bandwidth of a configuration. Each bandwidth
	// has an effective sample rate: NB 8 kHz, MB 12 kHz, WB 16 kHz,
	// SWB 24 kHz, FB 48 kHz.
	Bandwidth byte

	// FrameCode is the two-bit frame count code from the TOC byte:
	// one frame, two equal-size frames, two different-size frames, or an
	// arbitrary count signaled by the following byte.
	FrameCode byte
)

// Configuration returns the configuration number from the TOC byte.
func (t TOC) Configuration() Configuration {
	return Configuration(t >> 3)
}

// IsStereo reports whether the TOC stereo flag is set.
func (t TOC) IsStereo() bool {
	return t&0b00000100 != 0
}

// FrameCode returns the frame count code from the TOC byte.
func (t TOC) FrameCode() FrameCode {
	return FrameCode(t & 0b00000011)
}

// String returns a human-readable representation of the TOC.
func (t TOC) String() string {
	return fmt.Sprintf("toc: stereo=%v mode=%s bw=%s dur=%s frames=%s",
		t.IsStereo(),
		t.Configuration().Mode(),
		t.Configuration().Bandwidth(),
		t.Configuration().FrameDuration(),
		t.FrameCode(),
	)
}

// Frame code values.
const (
	OneFrame FrameCode = iota
	TwoEqualFrames
	TwoDifferentFrames
	ArbitraryFrames
)

// String returns a human-readable representation of the FrameCode.
func (c FrameCode) String() string {
	switch c {
	case OneFrame:
		return "one"
	case TwoEqualFrames:
		return "two-equal"
	case TwoDifferentFrames:
		return "two-different"
	case ArbitraryFrames:
		return "arbitrary"
	}
	return "invalid"
}

// Mode values.
const (
	SILK Mode = iota + 1
	CELT
	Hybrid
)

// String returns a human-readable representation of the Mode.
func (m Mode) String() string {
	switch m {
	case SILK:
		return "SILK"
	case CELT:
		return "CELT"
	case Hybrid:
		return "Hybrid"
	}
	return "invalid"
}

// Mode returns the operating mode for this configuration.
func (c Configuration) Mode() Mode {
	switch {
	case c <= 11:
		return SILK
	case c <= 15:
		return Hybrid
	case c <= 31:
		return CELT
	default:
		return 0
	}
}

// Frame duration values.
const (
	Duration2500us FrameDuration = iota + 1
	Duration5ms
	Duration10ms
	Duration20ms
	Duration40ms
	Duration60ms
)

// String returns a human-readable representation of the FrameDuration.
func (f FrameDuration) String() string {
	switch f {
	case Duration2500us:
		return "2.5ms"
	case Duration5ms:
		return "5ms"
	case Duration10ms:
		return "10ms"
	case Duration20ms:
		return "20ms"
	case Duration40ms:
		return "40ms"
	case Duration60ms:
		return "60ms"
	}
	return "invalid"
}

// Duration returns the frame duration as a time.Duration.
func (f FrameDuration) Duration() time.Duration {
	switch f {
	case Duration2500us:
		return 2500 * time.Microsecond
	case Duration5ms:
		return 5 * time.Millisecond
	case Duration10ms:
		return 10 * time.Millisecond
	case Duration20ms:
		return 20 * time.Millisecond
	case Duration40ms:
		return 40 * time.Millisecond
	case Duration60ms:
		return 60 * time.Millisecond
	}
	return 0
}

// SampleCount returns the number of samples per channel one frame of this
// duration holds at the given sample rate.
func (f FrameDuration) SampleCount(sampleRate int) int {
	return int(time.Duration(sampleRate) * f.Duration() / time.Second)
}

// FrameDuration returns the frame duration for this configuration.
func (c Configuration) FrameDuration() FrameDuration {
	switch c {
	case 16, 20, 24, 28:
		return Duration2500us
	case 17, 21, 25, 29:
		return Duration5ms
	case 0, 4, 8, 12, 14, 18, 22, 26, 30:
		return Duration10ms
	case 1, 5, 9, 13, 15, 19, 23, 27, 31:
		return Duration20ms
	case 2, 6, 10:
		return Duration40ms
	case 3, 7, 11:
		return Duration60ms
	}
	return 0
}

// Bandwidth values.
const (
	// NB (narrowband): 4 kHz audio bandwidth, 8 kHz effective rate.
	NB Bandwidth = iota + 1
	// MB (medium-band): 6 kHz audio bandwidth, 12 kHz effective rate.
	MB
	// WB (wideband): 8 kHz audio bandwidth, 16 kHz effective rate.
	WB
	// SWB (super-wideband): 12 kHz audio bandwidth, 24 kHz effective rate.
	SWB
	// FB (fullband): 20 kHz audio bandwidth, 48 kHz effective rate.
	FB
)

// Bandwidth returns the audio bandwidth for this configuration.
func (c Configuration) Bandwidth() Bandwidth {
	switch {
	case c <= 3:
		return NB
	case c <= 7:
		return MB
	case c <= 11:
		return WB
	case c <= 13:
		return SWB
	case c <= 15:
		return FB
	case c <= 19:
		return NB
	case c <= 23:
		return WB
	case c <= 27:
		return SWB
	case c <= 31:
		return FB
	}
	return 0
}

// String returns a human-readable representation of the Bandwidth.
func (b Bandwidth) String() string {
	switch b {
	case NB:
		return "narrowband"
	case MB:
		return "mediumband"
	case WB:
		return "wideband"
	case SWB:
		return "superwideband"
	case FB:
		return "fullband"
	}
	return "invalid"
}

// SampleRate returns the effective sample rate for this bandwidth.
func (b Bandwidth) SampleRate() int {
	switch b {
	case NB:
		return 8000
	case MB:
		return 12000
	case WB:
		return 16000
	case SWB:
		return 24000
	case FB:
		return 48000
	}
	return 0
}

// ParseFrameCountByte parses the byte following the TOC byte in packets
// with frame code 3 (arbitrary frame count):
//
//	 0 1 2 3 4 5 6 7
//	+-+-+-+-+-+-+-+-+
//	|v|p|     M     |
//	+-+-+-+-+-+-+-+-+
//
// https://datatracker.ietf.org/doc/html/rfc6716#section-3.2.5
func ParseFrameCountByte(in byte) (isVBR, hasPadding bool, frameCount byte) {
	isVBR = in&0b10000000 != 0
	hasPadding = in&0b01000000 != 0
	frameCount = in & 0b00111111
	return
}
