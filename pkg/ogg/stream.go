package ogg

/*
#include <ogg/ogg.h>
#include <stdlib.h>
#include <string.h>

// Wrapper helpers keep Go pointers out of libogg-owned structs.

static ogg_stream_state* alloc_stream_state(int serialno) {
    ogg_stream_state *state = (ogg_stream_state*)calloc(1, sizeof(ogg_stream_state));
    if (state && ogg_stream_init(state, serialno) != 0) {
        free(state);
        return NULL;
    }
    return state;
}

static void free_stream_state(ogg_stream_state *state) {
    if (state) {
        ogg_stream_clear(state);
        free(state);
    }
}

static int stream_packetin_copy(ogg_stream_state *state, const unsigned char *data,
                                long bytes, ogg_int64_t granulepos, ogg_int64_t packetno,
                                int bos, int eos) {
    ogg_packet packet;
    packet.packet = (unsigned char *)data;
    packet.bytes = bytes;
    packet.granulepos = granulepos;
    packet.packetno = packetno;
    packet.b_o_s = bos;
    packet.e_o_s = eos;
    return ogg_stream_packetin(state, &packet);
}
*/
import "C"
import (
	"errors"
	"runtime"
	"sync/atomic"
	"unsafe"
)

// StreamState packetizes pages of one logical Ogg bitstream, and in the
// encode direction turns packets back into pages. Call Clear when done.
type StreamState struct {
	state    *C.ogg_stream_state
	serialNo int32
	page     C.ogg_page
	packet   C.ogg_packet
	cleared  atomic.Bool
	cleanup  runtime.Cleanup
}

// NewStreamState creates a stream state for the given serial number.
func NewStreamState(serialNo int32) (*StreamState, error) {
	state := C.alloc_stream_state(C.int(serialNo))
	if state == nil {
		return nil, errors.New("ogg: failed to allocate stream state")
	}
	s := &StreamState{
		state:    state,
		serialNo: serialNo,
	}
	s.cleanup = runtime.AddCleanup(s, freeStreamState, uintptr(unsafe.Pointer(state)))
	return s, nil
}

func freeStreamState(ptr uintptr) {
	C.free_stream_state((*C.ogg_stream_state)(unsafe.Pointer(ptr)))
}

// Clear releases resources. Safe to call multiple times.
func (s *StreamState) Clear() {
	if s.cleared.CompareAndSwap(false, true) {
		s.cleanup.Stop()
		C.free_stream_state(s.state)
		s.state = nil
	}
}

// Reset resets the stream state without changing the serial number.
func (s *StreamState) Reset() {
	C.ogg_stream_reset(s.state)
}

// SerialNo returns the stream serial number.
func (s *StreamState) SerialNo() int32 {
	return s.serialNo
}

// PageIn submits a page to the stream for packetization.
func (s *StreamState) PageIn(page *Page) error {
	if C.ogg_stream_pagein(s.state, &page.page) != 0 {
		return ErrStream
	}
	return nil
}

// PacketOut extracts the next packet from submitted pages.
// Returns ErrNoPacket if no complete packet is buffered, ErrHole if data
// was lost between pages.
func (s *StreamState) PacketOut(packet *Packet) error {
	switch C.ogg_stream_packetout(s.state, &s.packet) {
	case 1:
		packet.data = C.GoBytes(unsafe.Pointer(s.packet.packet), C.int(s.packet.bytes))
		packet.granulePos = int64(s.packet.granulepos)
		packet.packetNo = int64(s.packet.packetno)
		packet.bos = s.packet.b_o_s != 0
		packet.eos = s.packet.e_o_s != 0
		return nil
	case 0:
		return ErrNoPacket
	default:
		return ErrHole
	}
}

// EOS reports whether the end of stream packet has been extracted.
func (s *StreamState) EOS() bool {
	return C.ogg_stream_eos(s.state) != 0
}

// PacketIn submits a packet for page generation. The data is copied.
func (s *StreamState) PacketIn(data []byte, granulePos, packetNo int64, bos, eos bool) error {
	if len(data) == 0 {
		return errors.New("ogg: empty packet data")
	}

	cBOS, cEOS := C.int(0), C.int(0)
	if bos {
		cBOS = 1
	}
	if eos {
		cEOS = 1
	}

	cData := C.CBytes(data)
	defer C.free(cData)

	if C.stream_packetin_copy(s.state, (*C.uchar)(cData), C.long(len(data)),
		C.ogg_int64_t(granulePos), C.ogg_int64_t(packetNo), cBOS, cEOS) != 0 {
		return ErrStream
	}
	return nil
}

// PageOut assembles a page from submitted packets when enough data has
// accumulated. Returns ErrNoPacket when no page is ready.
func (s *StreamState) PageOut() (header, body []byte, err error) {
	if C.ogg_stream_pageout(s.state, &s.page) == 0 {
		return nil, nil, ErrNoPacket
	}
	return s.copyPage()
}

// Flush forces all submitted packets into a page regardless of fill level.
// Returns ErrNoPacket when nothing is pending.
func (s *StreamState) Flush() (header, body []byte, err error) {
	if C.ogg_stream_flush(s.state, &s.page) == 0 {
		return nil, nil, ErrNoPacket
	}
	return s.copyPage()
}

func (s *StreamState) copyPage() (header, body []byte, err error) {
	header = C.GoBytes(unsafe.Pointer(s.page.header), C.int(s.page.header_len))
	body = C.GoBytes(unsafe.Pointer(s.page.body), C.int(s.page.body_len))
	return header, body, nil
}
