// Package ogg provides Go bindings for libogg, the reference
// implementation of the Ogg container format.
//
// The decode side (SyncState, StreamState, Decoder) turns a raw Ogg
// bitstream into pages and packets; the encode side (Encoder) does the
// reverse. Checksumming and page framing are entirely libogg's concern.
package ogg

/*
#cgo pkg-config: ogg
#include <ogg/ogg.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import (
	"errors"
	"unsafe"
)

// Page header type flags.
const (
	// Continued indicates this page starts with data continued from the
	// previous page.
	Continued = 0x01
	// BOS indicates beginning of stream.
	BOS = 0x02
	// EOS indicates end of stream.
	EOS = 0x04
)

var (
	// ErrSync indicates a sync error during page extraction.
	ErrSync = errors.New("ogg: sync error")
	// ErrNeedMore indicates more data is needed.
	ErrNeedMore = errors.New("ogg: need more data")
	// ErrStream indicates a stream error.
	ErrStream = errors.New("ogg: stream error")
	// ErrNoPacket indicates no packet or page is available.
	ErrNoPacket = errors.New("ogg: no packet available")
	// ErrHole indicates a gap in the data (packet loss).
	ErrHole = errors.New("ogg: hole in data")
)

// Page represents one Ogg page.
type Page struct {
	page C.ogg_page
}

// Header returns a copy of the page header bytes.
func (p *Page) Header() []byte {
	return C.GoBytes(unsafe.Pointer(p.page.header), C.int(p.page.header_len))
}

// Body returns a copy of the page body bytes.
func (p *Page) Body() []byte {
	return C.GoBytes(unsafe.Pointer(p.page.body), C.int(p.page.body_len))
}

// SerialNo returns the logical stream serial number.
func (p *Page) SerialNo() int32 {
	return int32(C.ogg_page_serialno(&p.page))
}

// PageNo returns the page sequence number.
func (p *Page) PageNo() int64 {
	return int64(C.ogg_page_pageno(&p.page))
}

// IsBOS reports whether this is a beginning of stream page.
func (p *Page) IsBOS() bool {
	return C.ogg_page_bos(&p.page) != 0
}

// IsEOS reports whether this is an end of stream page.
func (p *Page) IsEOS() bool {
	return C.ogg_page_eos(&p.page) != 0
}

// GranulePos returns the granule position of this page.
func (p *Page) GranulePos() int64 {
	return int64(C.ogg_page_granulepos(&p.page))
}

// Packets returns the number of packets completed on this page.
func (p *Page) Packets() int {
	return int(C.ogg_page_packets(&p.page))
}

// Packet represents one Ogg packet. Data is copied out of libogg-owned
// memory so packets stay valid after the stream state advances.
type Packet struct {
	data       []byte
	granulePos int64
	packetNo   int64
	bos        bool
	eos        bool
}

// Data returns the packet payload.
func (p *Packet) Data() []byte {
	return p.data
}

// BOS reports whether this is a beginning of stream packet.
func (p *Packet) BOS() bool {
	return p.bos
}

// EOS reports whether this is an end of stream packet.
func (p *Packet) EOS() bool {
	return p.eos
}

// GranulePos returns the granule position of this packet.
func (p *Packet) GranulePos() int64 {
	return p.granulePos
}

// PacketNo returns the packet sequence number.
func (p *Packet) PacketNo() int64 {
	return p.packetNo
}
