package oggopus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/haivivi/oggopus/pkg/opus"
)

var (
	// ErrSampleRate is returned for decode rates Opus does not support.
	ErrSampleRate = errors.New("oggopus: unsupported sample rate")
	// ErrTruncated is returned when the packet source runs out before
	// both header packets have been read.
	ErrTruncated = errors.New("oggopus: stream truncated before headers")
	// ErrClosed is returned when reading from a closed stream.
	ErrClosed = errors.New("oggopus: stream is closed")
)

// validRate reports whether rate is one of the rates Opus decodes at.
func validRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

// Stream decodes the audio packets of one Ogg-Opus stream into PCM
// frames. It owns a libopus multistream decoder handle for its lifetime;
// Close releases it. A Stream is forward-only, not restartable and not
// safe for concurrent use.
type Stream struct {
	src    PacketSource
	dec    *opus.MSDecoder
	closer io.Closer // extra teardown for NewReader-owned sources

	id       *IDHeader
	comments *CommentHeader

	// buf is the scratch storage for one packet's decoded PCM; pcm is the
	// valid region and off the read offset into it, both in samples.
	// Invariant: 0 <= off <= len(pcm).
	buf []float32
	pcm []float32
	off int

	// skip is the number of pre-skip samples per channel still to drop,
	// scaled to the decode rate.
	skip   int
	closed bool
}

// NewStream opens a decode session over src. sampleRate must be one of
// 8000, 12000, 16000, 24000 or 48000.
//
// The first two packets of src are consumed as the identification and
// comment headers. If the source ends before that, NewStream fails with
// ErrTruncated and no decoder handle is allocated. The pre-skip sample
// count advertised by the identification header is honored: those samples
// are dropped before the first frame is produced.
func NewStream(src PacketSource, sampleRate int) (*Stream, error) {
	if !validRate(sampleRate) {
		return nil, fmt.Errorf("%w: %d Hz", ErrSampleRate, sampleRate)
	}

	idPacket, err := src.NextPacket()
	if err != nil {
		return nil, headerReadErr(err)
	}
	id, err := ParseIDHeader(idPacket)
	if err != nil {
		return nil, err
	}

	commentPacket, err := src.NextPacket()
	if err != nil {
		return nil, headerReadErr(err)
	}
	comments, err := ParseCommentHeader(commentPacket)
	if err != nil {
		return nil, err
	}

	streams, coupled, mapping := id.Streams, id.CoupledStreams, id.Mapping
	if id.MappingFamily == 0 {
		streams, coupled, mapping = opus.DefaultMapping(id.Channels)
	}
	dec, err := opus.NewMSDecoder(sampleRate, id.Channels, streams, coupled, mapping)
	if err != nil {
		return nil, err
	}

	return &Stream{
		src:      src,
		dec:      dec,
		id:       id,
		comments: comments,
		// Pre-skip counts 48 kHz samples; scale to the decode rate.
		skip: int(id.PreSkip) * sampleRate / 48000,
	}, nil
}

func headerReadErr(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrTruncated
	}
	return fmt.Errorf("oggopus: reading header packet: %w", err)
}

// NewReader opens a decode session over an Ogg container read from r.
// Closing the stream also releases the demuxer state; the caller remains
// responsible for closing r.
func NewReader(r io.Reader, sampleRate int) (*Stream, error) {
	src, err := NewOggSource(r)
	if err != nil {
		return nil, err
	}
	s, err := NewStream(src, sampleRate)
	if err != nil {
		src.Close()
		return nil, err
	}
	s.closer = src
	return s, nil
}

// ID returns the parsed identification header. The header is immutable
// after construction.
func (s *Stream) ID() *IDHeader {
	return s.id
}

// Comments returns the parsed comment header.
func (s *Stream) Comments() *CommentHeader {
	return s.comments
}

// Channels returns the output channel count.
func (s *Stream) Channels() int {
	return s.id.Channels
}

// SampleRate returns the rate this stream decodes at.
func (s *Stream) SampleRate() int {
	return s.dec.SampleRate()
}

// Next returns the next PCM frame: one float32 sample per channel, in
// channel order, normalized to [-1, 1]. It returns io.EOF when the packet
// source is exhausted.
//
// The returned slice aliases the stream's scratch buffer and is valid
// until the packet that produced it is fully consumed; copy it to retain
// it across calls.
//
// Any failure (a malformed packet, a decoder error, a source error) is
// terminal for the session: the error is returned and no packets are
// skipped. Close remains safe to call afterwards.
func (s *Stream) Next() ([]float32, error) {
	if s.closed {
		return nil, ErrClosed
	}

	// A refill may be entirely eaten by pre-skip, so loop.
	for s.off == len(s.pcm) {
		if err := s.refill(); err != nil {
			return nil, err
		}
	}

	ch := s.id.Channels
	frame := s.pcm[s.off : s.off+ch]
	s.off += ch
	return frame, nil
}

// refill decodes the next packet into the scratch buffer.
func (s *Stream) refill() error {
	packet, err := s.src.NextPacket()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("oggopus: reading packet: %w", err)
	}

	samples, err := opus.PacketSampleCount(packet, s.dec.SampleRate())
	if err != nil {
		return fmt.Errorf("oggopus: sizing packet: %w", err)
	}

	ch := s.id.Channels
	if want := samples * ch; cap(s.buf) < want {
		s.buf = make([]float32, want)
	} else {
		s.buf = s.buf[:want]
	}

	n, err := s.dec.DecodeFloat(packet, s.buf)
	if err != nil {
		return fmt.Errorf("oggopus: decoding packet: %w", err)
	}
	s.pcm = s.buf[:n*ch]
	s.off = 0

	if s.skip > 0 {
		drop := min(s.skip, n)
		s.off = drop * ch
		s.skip -= drop
	}
	return nil
}

// Close releases the decoder handle. The first call wins; closing an
// already-closed stream logs a warning and returns nil, tolerating
// defensive double-cleanup.
func (s *Stream) Close() error {
	if s.closed {
		slog.Warn("oggopus: close of already-closed stream")
		return nil
	}
	s.closed = true
	s.dec.Close()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Decode opens a decode session over src, invokes fn with it, and closes
// the session on every exit path.
func Decode(src PacketSource, sampleRate int, fn func(*Stream) error) error {
	s, err := NewStream(src, sampleRate)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
