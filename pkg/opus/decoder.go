package opus

/*
#cgo pkg-config: opus
#include <opus.h>
#include <opus_multistream.h>
#include <stdlib.h>
*/
import "C"
import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrClosed is returned when using an encoder or decoder after Close.
var ErrClosed = errors.New("opus: handle is closed")

// MaxFrameSize is the largest possible frame size in samples per channel:
// 120 ms at 48 kHz.
const MaxFrameSize = 5760

// MSDecoder wraps a libopus multistream decoder handle. The handle is
// exclusively owned: a single MSDecoder must not be used from multiple
// goroutines without external synchronization.
type MSDecoder struct {
	sampleRate int
	channels   int
	cDec       *C.OpusMSDecoder
}

// NewMSDecoder creates a multistream decoder.
//
// Parameters:
//   - sampleRate: rate to decode at (8000, 12000, 16000, 24000, or 48000)
//   - channels: number of output channels
//   - streams: number of coded streams the packets carry
//   - coupledStreams: how many of those streams are stereo-coupled
//   - mapping: one entry per output channel, indexing into the decoded
//     streams (coupled stream k occupies slots 2k and 2k+1, mono streams
//     follow; 255 means a silent channel)
//
// Construction failures surface as a Status error.
func NewMSDecoder(sampleRate, channels, streams, coupledStreams int, mapping []byte) (*MSDecoder, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("opus: invalid channel count %d", channels)
	}
	if len(mapping) != channels {
		return nil, fmt.Errorf("opus: mapping has %d entries, want %d", len(mapping), channels)
	}

	var cErr C.int
	cDec := C.opus_multistream_decoder_create(
		C.opus_int32(sampleRate), C.int(channels),
		C.int(streams), C.int(coupledStreams),
		(*C.uchar)(unsafe.Pointer(&mapping[0])), &cErr)
	if cErr != C.OPUS_OK {
		return nil, fmt.Errorf("opus: multistream decoder create failed: %w", Status(cErr))
	}
	return &MSDecoder{
		sampleRate: sampleRate,
		channels:   channels,
		cDec:       cDec,
	}, nil
}

// DefaultMapping returns the implicit channel mapping for mapping family 0
// streams: the single coded stream feeds all channels directly.
func DefaultMapping(channels int) (streams, coupledStreams int, mapping []byte) {
	mapping = make([]byte, channels)
	for i := range mapping {
		mapping[i] = byte(i)
	}
	return 1, channels - 1, mapping
}

// Close releases the decoder handle. Safe to call multiple times.
func (d *MSDecoder) Close() {
	if d.cDec != nil {
		C.opus_multistream_decoder_destroy(d.cDec)
		d.cDec = nil
	}
}

// DecodeFloat decodes one packet into pcm, which must hold exactly
// frameSize*channels float32 samples for the packet (see
// PacketSampleCount). Samples are interleaved and normalized to [-1, 1].
// Returns the number of samples per channel decoded.
func (d *MSDecoder) DecodeFloat(packet []byte, pcm []float32) (int, error) {
	if d.cDec == nil {
		return 0, ErrClosed
	}
	if len(pcm) == 0 || len(pcm)%d.channels != 0 {
		return 0, fmt.Errorf("opus: pcm buffer of %d samples is not a multiple of %d channels", len(pcm), d.channels)
	}

	var dataPtr *C.uchar
	var dataLen C.opus_int32
	if len(packet) > 0 {
		dataPtr = (*C.uchar)(unsafe.Pointer(&packet[0]))
		dataLen = C.opus_int32(len(packet))
	}

	n := C.opus_multistream_decode_float(d.cDec, dataPtr, dataLen,
		(*C.float)(unsafe.Pointer(&pcm[0])), C.int(len(pcm)/d.channels), 0)
	if n < 0 {
		return 0, fmt.Errorf("opus: multistream decode failed: %w", Status(n))
	}
	return int(n), nil
}

// SampleRate returns the rate this decoder decodes at.
func (d *MSDecoder) SampleRate() int {
	return d.sampleRate
}

// Channels returns the number of output channels.
func (d *MSDecoder) Channels() int {
	return d.channels
}

// PacketSampleCount returns the number of samples per channel the packet
// decodes to at the given sample rate, as reported by libopus. Malformed
// packets surface as a Status error (StatusInvalidPacket or StatusBadArg).
func PacketSampleCount(packet []byte, sampleRate int) (int, error) {
	if len(packet) == 0 {
		return 0, StatusBadArg
	}
	n := C.opus_packet_get_nb_samples(
		(*C.uchar)(unsafe.Pointer(&packet[0])), C.opus_int32(len(packet)),
		C.opus_int32(sampleRate))
	if err := statusErr(int32(n)); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Version returns the libopus version string. The library carries no other
// process-wide state; linking it is the only initialization required.
func Version() string {
	return C.GoString(C.opus_get_version_string())
}
