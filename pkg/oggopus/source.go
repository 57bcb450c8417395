package oggopus

import "io"

// PacketSource yields the raw packets of one Ogg-Opus stream, in order:
// identification header, comment header, then audio packets. Sources are
// finite, forward-only and consumed at most once; NextPacket returns
// io.EOF when the stream is exhausted.
//
// The returned slice is only guaranteed valid until the next NextPacket
// call; callers that retain packets must copy them.
type PacketSource interface {
	NextPacket() ([]byte, error)
}

// SliceSource is an in-memory PacketSource over a fixed packet list.
type SliceSource struct {
	packets [][]byte
	next    int
}

// NewSliceSource creates a PacketSource yielding the given packets.
func NewSliceSource(packets ...[]byte) *SliceSource {
	return &SliceSource{packets: packets}
}

// NextPacket returns the next packet or io.EOF.
func (s *SliceSource) NextPacket() ([]byte, error) {
	if s.next >= len(s.packets) {
		return nil, io.EOF
	}
	p := s.packets[s.next]
	s.next++
	return p, nil
}
