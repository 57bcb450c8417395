package oggopus

import (
	"io"

	"github.com/haivivi/oggopus/pkg/ogg"
)

// OggSource is a PacketSource backed by an Ogg container. It follows the
// first logical stream it sees and ignores pages from any other
// multiplexed stream. Holes in the data (lost pages) are skipped rather
// than surfaced; header packets are passed through.
type OggSource struct {
	dec    *ogg.Decoder
	stream *ogg.StreamState
	packet ogg.Packet
	eos    bool
}

// NewOggSource creates a PacketSource reading Ogg pages from r. The
// caller remains responsible for closing r.
func NewOggSource(r io.Reader) (*OggSource, error) {
	dec, err := ogg.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &OggSource{dec: dec}, nil
}

// NextPacket returns the next packet of the stream, or io.EOF after the
// end-of-stream page (or the end of the underlying reader).
func (o *OggSource) NextPacket() ([]byte, error) {
	for {
		// Drain buffered packets before reading more pages, so packets on
		// the EOS page are not lost.
		if o.stream != nil {
			err := o.stream.PacketOut(&o.packet)
			if err == nil {
				data := o.packet.Data()
				if len(data) == 0 {
					continue
				}
				return data, nil
			}
			if err != ogg.ErrNoPacket {
				// Hole in the data; resume with the next packet.
				continue
			}
		}

		if o.eos {
			return nil, io.EOF
		}

		page, err := o.dec.ReadPage()
		if err != nil {
			if err == io.EOF {
				o.eos = true
				continue
			}
			return nil, err
		}

		if o.stream == nil {
			o.stream, err = ogg.NewStreamState(page.SerialNo())
			if err != nil {
				return nil, err
			}
		} else if page.SerialNo() != o.stream.SerialNo() {
			continue
		}

		if err := o.stream.PageIn(page); err != nil {
			return nil, err
		}
		if page.IsEOS() {
			o.eos = true
		}
	}
}

// Close releases the demuxer state. It does not close the underlying
// reader.
func (o *OggSource) Close() error {
	if o.stream != nil {
		o.stream.Clear()
	}
	return o.dec.Close()
}
