package oggopus

import (
	"errors"
	"io"

	"github.com/haivivi/oggopus/pkg/ogg"
	"github.com/haivivi/oggopus/pkg/opus"
)

// ErrWriterClosed is returned when writing to a closed Writer.
var ErrWriterClosed = errors.New("oggopus: writer is closed")

// Writer muxes Opus packets into an Ogg-Opus stream: the two header
// packets on their own pages, then audio packets with 48 kHz granule
// positions derived from each packet's TOC. The last packet written
// before Close carries the end-of-stream flag.
type Writer struct {
	enc     *ogg.Encoder
	granule int64
	pending opus.Packet // held back so Close can flag it EOS
	closed  bool
}

// NewWriter writes the header packets for id and comments to w and
// returns a Writer for the audio packets.
func NewWriter(w io.Writer, id *IDHeader, comments *CommentHeader) (*Writer, error) {
	idPacket, err := id.MarshalBinary()
	if err != nil {
		return nil, err
	}
	commentPacket, err := comments.MarshalBinary()
	if err != nil {
		return nil, err
	}

	enc, err := ogg.NewEncoder(w)
	if err != nil {
		return nil, err
	}

	// Each header must end its page (RFC 7845 §3).
	if err := enc.WritePacket(idPacket, 0, true, false); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	if err := enc.WritePacket(commentPacket, 0, false, false); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	return &Writer{enc: enc}, nil
}

// WritePacket appends one audio packet to the stream.
func (w *Writer) WritePacket(packet opus.Packet) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.flushPending(false); err != nil {
		return err
	}
	w.pending = packet.Clone()
	return nil
}

func (w *Writer) flushPending(eos bool) error {
	if w.pending == nil {
		return nil
	}
	w.granule += int64(w.pending.SampleCount(48000))
	err := w.enc.WritePacket(w.pending, w.granule, false, eos)
	w.pending = nil
	return err
}

// Close writes the held-back final packet with the end-of-stream flag,
// flushes remaining pages and releases resources.
//
// The end-of-stream flag rides on the last audio packet, so a Writer
// closed before any WritePacket call emits a headers-only stream with no
// end-of-stream page. Readers still terminate cleanly on it: the
// container simply ends after the header pages.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.flushPending(true); err != nil {
		w.enc.Close()
		return err
	}
	return w.enc.Close()
}
