package ogg

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// Encoder writes Ogg pages to an io.Writer.
type Encoder struct {
	w        io.Writer
	stream   *StreamState
	packetNo int64
}

// NewEncoder creates an Ogg encoder with a random stream serial number.
func NewEncoder(w io.Writer) (*Encoder, error) {
	var serialNo int32
	if err := binary.Read(rand.Reader, binary.LittleEndian, &serialNo); err != nil {
		return nil, err
	}
	return NewEncoderWithSerial(w, serialNo)
}

// NewEncoderWithSerial creates an Ogg encoder with a specific serial number.
func NewEncoderWithSerial(w io.Writer, serialNo int32) (*Encoder, error) {
	stream, err := NewStreamState(serialNo)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		w:      w,
		stream: stream,
	}, nil
}

// SerialNo returns the stream serial number.
func (e *Encoder) SerialNo() int32 {
	return e.stream.SerialNo()
}

// WritePacket submits a packet and writes any completed pages.
// Set bos for the first packet of the stream and eos for the last one.
func (e *Encoder) WritePacket(data []byte, granulePos int64, bos, eos bool) error {
	if err := e.stream.PacketIn(data, granulePos, e.packetNo, bos, eos); err != nil {
		return err
	}
	e.packetNo++

	for {
		header, body, err := e.stream.PageOut()
		if err == ErrNoPacket {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.writePage(header, body); err != nil {
			return err
		}
	}
}

// Flush forces any buffered packets into pages.
func (e *Encoder) Flush() error {
	for {
		header, body, err := e.stream.Flush()
		if err == ErrNoPacket {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.writePage(header, body); err != nil {
			return err
		}
	}
}

// Close flushes pending pages and releases resources.
func (e *Encoder) Close() error {
	err := e.Flush()
	e.stream.Clear()
	return err
}

func (e *Encoder) writePage(header, body []byte) error {
	if _, err := e.w.Write(header); err != nil {
		return err
	}
	_, err := e.w.Write(body)
	return err
}
