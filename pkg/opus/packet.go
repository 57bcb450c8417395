package opus

import (
	"slices"
	"time"
)

// Packet is one raw Opus packet: a TOC byte followed by one or more
// compressed frames.
type Packet []byte

// TOC returns the TOC byte of this packet, or zero for an empty packet.
func (p Packet) TOC() TOC {
	if len(p) == 0 {
		return 0
	}
	return TOC(p[0])
}

// Clone returns a copy of the packet.
func (p Packet) Clone() Packet {
	return slices.Clone(p)
}

// IsStereo reports whether this packet codes stereo audio.
func (p Packet) IsStereo() bool {
	return p.TOC().IsStereo()
}

// FrameCount returns the number of coded frames in this packet, derived
// from the TOC frame code. Returns 0 for packets too short to carry the
// signaled layout.
func (p Packet) FrameCount() int {
	if len(p) == 0 {
		return 0
	}
	switch p.TOC().FrameCode() {
	case OneFrame:
		return 1
	case TwoEqualFrames, TwoDifferentFrames:
		return 2
	case ArbitraryFrames:
		if len(p) < 2 {
			return 0
		}
		_, _, n := ParseFrameCountByte(p[1])
		return int(n)
	}
	return 0
}

// Duration returns the total audio duration coded by this packet.
func (p Packet) Duration() time.Duration {
	return p.TOC().Configuration().FrameDuration().Duration() * time.Duration(p.FrameCount())
}

// SampleCount returns the number of samples per channel this packet
// decodes to at the given sample rate, computed from the TOC byte alone.
// This is the pure-Go counterpart of PacketSampleCount and needs no
// decoder; it does not validate the packet beyond its first two bytes.
func (p Packet) SampleCount(sampleRate int) int {
	return p.TOC().Configuration().FrameDuration().SampleCount(sampleRate) * p.FrameCount()
}
