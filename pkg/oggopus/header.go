package oggopus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	idMagic      = "OpusHead"
	commentMagic = "OpusTags"

	// idHeaderSize is the fixed part of the identification header: magic,
	// version, channel count, pre-skip, input sample rate, output gain and
	// mapping family.
	idHeaderSize = 19
)

// ErrBadHeader is returned when a header packet has the wrong magic or a
// malformed layout.
var ErrBadHeader = errors.New("oggopus: malformed header")

// IDHeader is the identification header carried in the first packet of an
// Ogg-Opus stream (RFC 7845 §5.1). All multi-byte fields are little-endian
// on the wire.
type IDHeader struct {
	// Version of the encapsulation format, fixed at 1.
	Version uint8

	// Channels is the output channel count. Must be positive.
	Channels int

	// PreSkip is the number of 48 kHz samples per channel to discard from
	// the start of decoder output.
	PreSkip uint16

	// SampleRate is the sample rate of the original input signal in Hz.
	// It is informational; Opus always decodes at a rate of its own set.
	SampleRate uint32

	// OutputGain is a Q7.8 fixed-point gain in dB to apply on playback.
	OutputGain int16

	// MappingFamily selects the channel mapping scheme. Family 0 is the
	// simple mono/stereo case with a single coded stream and no explicit
	// mapping table.
	MappingFamily uint8

	// Streams is the number of coded Opus streams in each packet.
	Streams int

	// CoupledStreams is how many of those streams are stereo-coupled.
	CoupledStreams int

	// Mapping has one entry per output channel, indexing into the decoded
	// streams; 255 marks a silent channel. Nil for mapping family 0.
	Mapping []byte
}

// ParseIDHeader parses an identification header packet.
//
// For mapping family 0 the stream counts are implicit: one stream,
// channels-1 coupled, no mapping table. Any trailing bytes after the fixed
// fields are ignored in that case. For other families the packet must
// carry stream count, coupled count and a mapping table with exactly one
// entry per channel, each entry indexing a decoded channel
// (< streams+coupled) or 255 for silence.
func ParseIDHeader(data []byte) (*IDHeader, error) {
	if len(data) < idHeaderSize {
		return nil, fmt.Errorf("%w: identification packet of %d bytes", ErrBadHeader, len(data))
	}
	if string(data[:8]) != idMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadHeader, data[:8])
	}

	h := &IDHeader{
		Version:       data[8],
		Channels:      int(data[9]),
		PreSkip:       binary.LittleEndian.Uint16(data[10:]),
		SampleRate:    binary.LittleEndian.Uint32(data[12:]),
		OutputGain:    int16(binary.LittleEndian.Uint16(data[16:])),
		MappingFamily: data[18],
	}
	if h.Channels == 0 {
		return nil, fmt.Errorf("%w: zero channel count", ErrBadHeader)
	}

	if h.MappingFamily == 0 {
		if h.Channels > 2 {
			return nil, fmt.Errorf("%w: mapping family 0 supports at most 2 channels, got %d", ErrBadHeader, h.Channels)
		}
		h.Streams = 1
		h.CoupledStreams = h.Channels - 1
		return h, nil
	}

	if len(data) < idHeaderSize+2+h.Channels {
		return nil, fmt.Errorf("%w: mapping table truncated", ErrBadHeader)
	}
	h.Streams = int(data[19])
	h.CoupledStreams = int(data[20])
	if h.Streams == 0 {
		return nil, fmt.Errorf("%w: zero stream count", ErrBadHeader)
	}
	if h.CoupledStreams > h.Streams {
		return nil, fmt.Errorf("%w: %d coupled streams exceed %d streams", ErrBadHeader, h.CoupledStreams, h.Streams)
	}

	h.Mapping = bytes.Clone(data[21 : 21+h.Channels])
	for i, m := range h.Mapping {
		if m != 255 && int(m) >= h.Streams+h.CoupledStreams {
			return nil, fmt.Errorf("%w: mapping entry %d indexes stream channel %d of %d", ErrBadHeader, i, m, h.Streams+h.CoupledStreams)
		}
	}
	return h, nil
}

// Validate checks the header's internal consistency: channel count,
// stream counts and, for mapping families other than 0, the mapping
// table shape and entry range.
func (h *IDHeader) Validate() error {
	if h.Channels <= 0 || h.Channels > 255 {
		return fmt.Errorf("oggopus: invalid channel count %d", h.Channels)
	}
	if h.MappingFamily == 0 {
		if h.Channels > 2 {
			return fmt.Errorf("oggopus: mapping family 0 supports at most 2 channels, got %d", h.Channels)
		}
		return nil
	}
	if h.Streams <= 0 || h.Streams > 255 || h.CoupledStreams < 0 || h.CoupledStreams > h.Streams {
		return fmt.Errorf("oggopus: invalid stream counts %d/%d", h.Streams, h.CoupledStreams)
	}
	if len(h.Mapping) != h.Channels {
		return fmt.Errorf("oggopus: mapping has %d entries, want %d", len(h.Mapping), h.Channels)
	}
	for i, m := range h.Mapping {
		if m != 255 && int(m) >= h.Streams+h.CoupledStreams {
			return fmt.Errorf("oggopus: mapping entry %d indexes stream channel %d of %d", i, m, h.Streams+h.CoupledStreams)
		}
	}
	return nil
}

// MarshalBinary serializes the header to its packet form. For mapping
// family 0 the stream counts and mapping table are omitted entirely.
func (h *IDHeader) MarshalBinary() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, idHeaderSize, idHeaderSize+2+h.Channels)
	copy(buf, idMagic)
	buf[8] = h.Version
	buf[9] = byte(h.Channels)
	binary.LittleEndian.PutUint16(buf[10:], h.PreSkip)
	binary.LittleEndian.PutUint32(buf[12:], h.SampleRate)
	binary.LittleEndian.PutUint16(buf[16:], uint16(h.OutputGain))
	buf[18] = h.MappingFamily

	if h.MappingFamily == 0 {
		return buf, nil
	}

	buf = append(buf, byte(h.Streams), byte(h.CoupledStreams))
	buf = append(buf, h.Mapping...)
	return buf, nil
}

// CommentHeader is the metadata header carried in the second packet of an
// Ogg-Opus stream (RFC 7845 §5.2): a vendor string and an ordered list of
// KEY=value tags. Tag order is preserved and keys need not be unique.
type CommentHeader struct {
	Vendor string
	Tags   []string
}

// ParseCommentHeader parses a comment header packet. Tag bytes are passed
// through as raw text with no character-set validation.
func ParseCommentHeader(data []byte) (*CommentHeader, error) {
	if len(data) < 8 || string(data[:8]) != commentMagic {
		return nil, fmt.Errorf("%w: bad magic in comment packet", ErrBadHeader)
	}
	rest := data[8:]

	vendor, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: vendor string: %v", ErrBadHeader, err)
	}

	if len(rest) < 4 {
		return nil, fmt.Errorf("%w: missing tag count", ErrBadHeader)
	}
	count := binary.LittleEndian.Uint32(rest)
	rest = rest[4:]
	if uint64(count)*4 > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: tag count %d exceeds packet size", ErrBadHeader, count)
	}

	h := &CommentHeader{
		Vendor: string(vendor),
		Tags:   make([]string, 0, count),
	}
	for i := uint32(0); i < count; i++ {
		var tag []byte
		tag, rest, err = readLengthPrefixed(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: tag %d: %v", ErrBadHeader, i, err)
		}
		h.Tags = append(h.Tags, string(tag))
	}
	return h, nil
}

func readLengthPrefixed(data []byte) (value, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, errors.New("missing length")
	}
	n := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint64(n) > uint64(len(data)) {
		return nil, nil, fmt.Errorf("length %d exceeds %d remaining bytes", n, len(data))
	}
	return data[:n], data[n:], nil
}

// MarshalBinary serializes the header to its packet form.
func (h *CommentHeader) MarshalBinary() ([]byte, error) {
	size := 8 + 4 + len(h.Vendor) + 4
	for _, tag := range h.Tags {
		size += 4 + len(tag)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, commentMagic...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(h.Vendor)))
	buf = append(buf, h.Vendor...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(h.Tags)))
	for _, tag := range h.Tags {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tag)))
		buf = append(buf, tag...)
	}
	return buf, nil
}

// Get returns the value of the first tag with the given key,
// case-insensitively per the Vorbis comment convention.
func (h *CommentHeader) Get(key string) (string, bool) {
	for _, tag := range h.Tags {
		if k, v, ok := strings.Cut(tag, "="); ok && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Add appends a KEY=value tag, preserving insertion order.
func (h *CommentHeader) Add(key, value string) {
	h.Tags = append(h.Tags, key+"="+value)
}

// IsHeaderPacket reports whether the packet is an identification or
// comment header: longer than the 8-byte magic and prefixed with
// "OpusHead" or "OpusTags". Callers use it to tell header packets from
// audio packets when the packet source is opaque.
func IsHeaderPacket(data []byte) bool {
	if len(data) <= 8 {
		return false
	}
	return bytes.HasPrefix(data, []byte(idMagic)) || bytes.HasPrefix(data, []byte(commentMagic))
}
