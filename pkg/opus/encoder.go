package opus

/*
#cgo pkg-config: opus
#include <opus.h>
#include <stdlib.h>

// Wrapper functions for variadic opus_encoder_ctl
static int opus_encoder_set_bitrate(OpusEncoder *enc, opus_int32 bitrate) {
    return opus_encoder_ctl(enc, OPUS_SET_BITRATE(bitrate));
}

static int opus_encoder_set_complexity(OpusEncoder *enc, opus_int32 complexity) {
    return opus_encoder_ctl(enc, OPUS_SET_COMPLEXITY(complexity));
}

static int opus_encoder_get_lookahead(OpusEncoder *enc, opus_int32 *lookahead) {
    return opus_encoder_ctl(enc, OPUS_GET_LOOKAHEAD(lookahead));
}
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// Application type constants for encoder initialization.
const (
	// ApplicationVoIP gives best quality at a given bitrate for voice signals.
	ApplicationVoIP = int(C.OPUS_APPLICATION_VOIP)

	// ApplicationAudio gives best quality at a given bitrate for most non-voice signals.
	ApplicationAudio = int(C.OPUS_APPLICATION_AUDIO)

	// ApplicationRestrictedLowdelay configures the minimum possible coding delay.
	ApplicationRestrictedLowdelay = int(C.OPUS_APPLICATION_RESTRICTED_LOWDELAY)
)

// maxPacketBytes is the recommended output buffer size for one packet.
const maxPacketBytes = 4000

// Encoder wraps a libopus encoder handle. It exists to produce real Opus
// packets for tests and tooling; decoding is this module's main concern.
type Encoder struct {
	sampleRate int
	channels   int
	cEnc       *C.OpusEncoder
}

// NewEncoder creates an Opus encoder.
//
// Parameters:
//   - sampleRate: input rate (8000, 12000, 16000, 24000, or 48000)
//   - channels: number of channels (1 or 2)
//   - application: ApplicationVoIP, ApplicationAudio, or
//     ApplicationRestrictedLowdelay
func NewEncoder(sampleRate, channels, application int) (*Encoder, error) {
	var cErr C.int
	cEnc := C.opus_encoder_create(C.opus_int32(sampleRate), C.int(channels), C.int(application), &cErr)
	if cErr != C.OPUS_OK {
		return nil, fmt.Errorf("opus: encoder create failed: %w", Status(cErr))
	}
	return &Encoder{
		sampleRate: sampleRate,
		channels:   channels,
		cEnc:       cEnc,
	}, nil
}

// NewAudioEncoder creates an Opus encoder optimized for music/audio.
func NewAudioEncoder(sampleRate, channels int) (*Encoder, error) {
	return NewEncoder(sampleRate, channels, ApplicationAudio)
}

// Close releases the encoder handle. Safe to call multiple times.
func (e *Encoder) Close() {
	if e.cEnc != nil {
		C.opus_encoder_destroy(e.cEnc)
		e.cEnc = nil
	}
}

// Encode encodes int16 PCM samples to one Opus packet. pcm must contain
// frameSize*channels interleaved samples, where frameSize is a valid Opus
// frame size at the encoder's rate.
func (e *Encoder) Encode(pcm []int16, frameSize int) (Packet, error) {
	if e.cEnc == nil {
		return nil, ErrClosed
	}
	if len(pcm) != frameSize*e.channels {
		return nil, fmt.Errorf("opus: pcm has %d samples, want %d", len(pcm), frameSize*e.channels)
	}

	buf := make([]byte, maxPacketBytes)
	n := C.opus_encode(e.cEnc,
		(*C.opus_int16)(unsafe.Pointer(&pcm[0])), C.int(frameSize),
		(*C.uchar)(unsafe.Pointer(&buf[0])), C.opus_int32(len(buf)))
	if n < 0 {
		return nil, fmt.Errorf("opus: encode failed: %w", Status(n))
	}
	return Packet(buf[:n]), nil
}

// EncodeFloat encodes float32 PCM samples in [-1, 1] to one Opus packet.
// pcm must contain frameSize*channels interleaved samples.
func (e *Encoder) EncodeFloat(pcm []float32, frameSize int) (Packet, error) {
	if e.cEnc == nil {
		return nil, ErrClosed
	}
	if len(pcm) != frameSize*e.channels {
		return nil, fmt.Errorf("opus: pcm has %d samples, want %d", len(pcm), frameSize*e.channels)
	}

	buf := make([]byte, maxPacketBytes)
	n := C.opus_encode_float(e.cEnc,
		(*C.float)(unsafe.Pointer(&pcm[0])), C.int(frameSize),
		(*C.uchar)(unsafe.Pointer(&buf[0])), C.opus_int32(len(buf)))
	if n < 0 {
		return nil, fmt.Errorf("opus: encode failed: %w", Status(n))
	}
	return Packet(buf[:n]), nil
}

// SetBitrate sets the target bitrate in bits per second.
func (e *Encoder) SetBitrate(bitrate int) error {
	if e.cEnc == nil {
		return ErrClosed
	}
	return statusErr(int32(C.opus_encoder_set_bitrate(e.cEnc, C.opus_int32(bitrate))))
}

// SetComplexity sets the encoder's computational complexity (0-10).
func (e *Encoder) SetComplexity(complexity int) error {
	if e.cEnc == nil {
		return ErrClosed
	}
	return statusErr(int32(C.opus_encoder_set_complexity(e.cEnc, C.opus_int32(complexity))))
}

// Lookahead returns the number of samples of algorithmic delay the encoder
// introduces. An Ogg-Opus identification header should advertise this as
// its pre-skip.
func (e *Encoder) Lookahead() (int, error) {
	if e.cEnc == nil {
		return 0, ErrClosed
	}
	var lookahead C.opus_int32
	if err := statusErr(int32(C.opus_encoder_get_lookahead(e.cEnc, &lookahead))); err != nil {
		return 0, err
	}
	return int(lookahead), nil
}

// SampleRate returns the input rate of this encoder.
func (e *Encoder) SampleRate() int {
	return e.sampleRate
}

// Channels returns the number of channels of this encoder.
func (e *Encoder) Channels() int {
	return e.channels
}

// FrameSize20ms returns the frame size for 20 ms frames at the encoder's
// rate, the recommended default.
func (e *Encoder) FrameSize20ms() int {
	return e.sampleRate * 20 / 1000
}
